package naming

import (
	"context"
	"strings"

	"github.com/raphaelgruber/umlfca/internal/models"
)

// FallbackConfidence is assigned to rule-based names.
const FallbackConfidence = 0.5

var (
	authKeywords = []string{
		"password", "passwd", "email", "login", "authenticate",
		"motdepasse", "mot_de_passe", "courriel", "connexion", "authentifier",
	}
	idTokens    = []string{"id:", "id :"}
	titleTokens = []string{"name", "title", "label"}
)

// FallbackNamer derives names from the shared features without any external call.
type FallbackNamer struct{}

// Suggest never fails.
func (FallbackNamer) Suggest(_ context.Context, c *models.Candidate) (string, error) {
	return FallbackName(c.Extent, c.Intent), nil
}

func (FallbackNamer) Confidence() float64 { return FallbackConfidence }

// FallbackName applies the rules in order, first match wins:
// no shared features, authentication data, identifier plus title,
// identifier, title, then the first shared feature.
func FallbackName(extent, intent []string) string {
	if len(intent) == 0 {
		if len(extent) == 0 {
			return "AbstractBase"
		}
		return "Abstract" + extent[0]
	}

	lower := make([]string, len(intent))
	for i, f := range intent {
		lower[i] = strings.ToLower(f)
	}

	if anyContains(lower, authKeywords) {
		if len(intent) >= 3 {
			return "AbstractUser"
		}
		return "AbstractAuthenticatable"
	}

	titled := anyContains(lower, titleTokens)
	if anyContains(lower, idTokens) {
		if titled {
			return "AbstractEntity"
		}
		return "AbstractIdentifiable"
	}

	if titled {
		if anyContains(lower, []string{"title"}) {
			return "AbstractTitled"
		}
		return "AbstractNamed"
	}

	base := Sanitize(intent[0])
	if base == "" {
		base = "Base"
	}
	return "Abstract" + base
}

func anyContains(features, tokens []string) bool {
	for _, f := range features {
		for _, tok := range tokens {
			if strings.Contains(f, tok) {
				return true
			}
		}
	}
	return false
}
