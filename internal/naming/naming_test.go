package naming

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/raphaelgruber/umlfca/internal/config"
	"github.com/raphaelgruber/umlfca/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel implements llms.Model with a canned answer.
type fakeModel struct {
	answer   string
	err      error
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, o := range options {
		o(&f.opts)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.answer}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+name: String", "Name"},
		{"-first_name: String", "FirstName"},
		{"#getArea(): double", "Getarea"},
		{"~vehicle type", "VehicleType"},
		{"Payment-Method!", "Paymentmethod"},
		{"  ", ""},
		{"+: int", ""},
		{"électricité", "Électricité"},
		{"user2fa", "User2Fa"},
		{"+oauth2_token: String", "Oauth2Token"},
		{"3d_model", "3DModel"},
		{"HTTPServer", "Httpserver"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Vehicle", "Vehicle"},
		{"quoted", `"Vehicle"`, "Vehicle"},
		{"single quoted", "'Animal'\n", "Animal"},
		{"multi line", "LivingBeing\nBecause both classes...", "Livingbeing"},
		{"spaces", "  payment method  ", "PaymentMethod"},
		{"punctuation only", "...", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseResponse(tt.in))
		})
	}
}

func TestFallbackName(t *testing.T) {
	tests := []struct {
		name   string
		extent []string
		intent []string
		want   string
	}{
		{"empty intent", []string{"Dog", "Cat"}, nil, "AbstractDog"},
		{"empty everything", nil, nil, "AbstractBase"},
		{"auth rich", []string{"A", "B"}, []string{"+email: String", "+age: int", "+phone: String"}, "AbstractUser"},
		{"auth small", []string{"A", "B"}, []string{"+Password: String"}, "AbstractAuthenticatable"},
		{"auth french", []string{"A", "B"}, []string{"+motDePasse: String", "+courriel: String"}, "AbstractAuthenticatable"},
		{"id and name", []string{"A", "B"}, []string{"+id: int", "+name: String"}, "AbstractEntity"},
		{"id spaced", []string{"A", "B"}, []string{"+id : int"}, "AbstractIdentifiable"},
		{"title", []string{"A", "B"}, []string{"+title: String", "+year: int"}, "AbstractTitled"},
		{"label", []string{"A", "B"}, []string{"+label: String"}, "AbstractNamed"},
		{"named", []string{"Dog", "Cat"}, []string{"+age: int", "+name: String"}, "AbstractNamed"},
		{"generic", []string{"A", "B"}, []string{"+wheels: int", "+drive()"}, "AbstractWheels"},
		{"unsanitizable", []string{"A", "B"}, []string{"+(): void"}, "AbstractBase"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackName(tt.extent, tt.intent))
		})
	}
}

func TestOpenAINamer(t *testing.T) {
	model := &fakeModel{answer: "\"Vehicle\"\nExplanation"}
	n := NewOpenAINamer(model)
	c := &models.Candidate{Extent: []string{"Car", "Bike"}, Intent: []string{"+wheels: int"}}

	name, err := n.Suggest(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "Vehicle", name)
	assert.Equal(t, LLMConfidence, n.Confidence())

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, 0.3, model.opts.Temperature)
	assert.Equal(t, 50, model.opts.MaxTokens)
}

func TestAnthropicNamerSendsSingleMessage(t *testing.T) {
	model := &fakeModel{answer: "Animal"}
	name, err := NewAnthropicNamer(model).Suggest(context.Background(), &models.Candidate{Extent: []string{"Dog"}})
	require.NoError(t, err)
	assert.Equal(t, "Animal", name)
	require.Len(t, model.messages, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[0].Role)
}

func TestNamerEmptyAnswer(t *testing.T) {
	_, err := NewOpenAINamer(&fakeModel{answer: "!!!"}).Suggest(context.Background(), &models.Candidate{})
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(&models.Candidate{Extent: []string{"Dog", "Cat"}, Intent: []string{"+name: String", "+age: int"}})
	assert.Contains(t, p, "Dog, Cat")
	assert.Contains(t, p, "+name: String, +age: int")
	assert.Contains(t, p, "PascalCase")
}

func TestNewNamer(t *testing.T) {
	_, err := NewNamer(config.Config{LLMProvider: config.ProviderOpenAI})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewNamer(config.Config{LLMProvider: config.ProviderAnthropic})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewNamer(config.Config{LLMProvider: "gemini", OpenAIAPIKey: "sk"})
	assert.ErrorIs(t, err, ErrUnsupportedProvider)

	n, err := NewNamer(config.Config{LLMProvider: config.ProviderAnthropic, AnthropicAPIKey: "sk-ant"})
	require.NoError(t, err)
	assert.IsType(t, &AnthropicNamer{}, n)
}

func TestServiceUsesPrimary(t *testing.T) {
	svc := NewServiceWithNamer(NewOpenAINamer(&fakeModel{answer: "Pet"}), nil)
	c := &models.Candidate{Extent: []string{"Dog", "Cat"}, Intent: []string{"+name: String"}}

	svc.Name(context.Background(), c)
	assert.Equal(t, "Pet", c.Name)
	assert.Equal(t, LLMConfidence, c.Confidence)
}

func TestServiceFallsBackPerCandidate(t *testing.T) {
	model := &fakeModel{err: errors.New("rate limited")}
	svc := NewServiceWithNamer(NewOpenAINamer(model), nil)
	cands := []*models.Candidate{
		{Extent: []string{"Dog", "Cat"}, Intent: []string{"+name: String"}},
		{Extent: []string{"Car", "Bike"}, Intent: []string{"+wheels: int"}},
	}

	svc.NameAll(context.Background(), cands)
	assert.Equal(t, "AbstractNamed", cands[0].Name)
	assert.Equal(t, "AbstractWheels", cands[1].Name)
	for _, c := range cands {
		assert.Equal(t, FallbackConfidence, c.Confidence)
	}
}

func TestFallbackNamerSuggest(t *testing.T) {
	c := &models.Candidate{Extent: []string{"Car", "Bike"}, Intent: []string{"+wheels: int"}}

	name, err := FallbackNamer{}.Suggest(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, FallbackName(c.Extent, c.Intent), name)
	assert.Equal(t, FallbackConfidence, FallbackNamer{}.Confidence())
}

func TestServiceWithoutCredentials(t *testing.T) {
	svc := NewService(config.Config{LLMProvider: config.ProviderOpenAI}, nil)
	c := &models.Candidate{Extent: []string{"A", "B"}, Intent: []string{"+id: int"}}

	svc.Name(context.Background(), c)
	assert.Equal(t, "AbstractIdentifiable", c.Name)
	assert.Equal(t, FallbackConfidence, c.Confidence)
}

func TestExportNamed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "abstract_classes.json")
	cands := []*models.Candidate{{Name: "Animal", Extent: []string{"Dog"}, Intent: []string{"+name: String"}, Confidence: 0.5, Relevance: 80}}
	require.NoError(t, ExportNamed(path, cands))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Animal", got[0]["name"])
	assert.Equal(t, 0.5, got[0]["confidence"])
	assert.NotContains(t, got[0], "Relevance")
}
