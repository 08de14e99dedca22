package graphdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathMatchesQualifierStripping(t *testing.T) {
	assert.True(t, PathMatches("./guards/auth", "src/guards/auth.guard.ts"))
}

func TestPathMatchesBoundaryEnforcement(t *testing.T) {
	assert.False(t, PathMatches("./guards/auth", "src/interceptors/auth.interceptor.ts"))
	assert.False(t, PathMatches("auth", "src/unauth.ts"))
}

func TestPathMatchesAliasPrefix(t *testing.T) {
	assert.True(t, PathMatches("@controllers/account", "backend/src/controllers/account.ts"))
}

func TestPathMatchesImplicitIndex(t *testing.T) {
	assert.True(t, PathMatches("./models", "src/models/index.ts"))
}

func TestPathMatchesEmptyInputs(t *testing.T) {
	assert.False(t, PathMatches("", "src/a.ts"))
	assert.False(t, PathMatches("./a", ""))
}

func TestResolveCandidatesShortestWins(t *testing.T) {
	candidates := []string{"src/deep/nested/auth.service.ts", "src/auth.service.ts"}
	got := ResolveCandidates("./auth", candidates)
	assert.Equal(t, "src/auth.service.ts", got)
}
