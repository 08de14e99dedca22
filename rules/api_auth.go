package rules

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/TheAuditorTool/auditor-core/schema"
)

// authKeywords mirrors original_source's api_auth_detector.py auth_keywords
// list: generic auth terms, JWT/session/cookie terms, framework-specific
// decorator names, role and API-key terms, OAuth terms, and middleware
// names. A control is considered authenticating if it contains any of
// these as a substring, case-insensitively.
var authKeywords = []string{
	"auth", "login_required", "permission_required", "requires_auth",
	"authenticated", "authenticate", "authorize", "authorization",
	"jwt", "token", "bearer", "session", "cookie",
	"passport", "ensureloggedin", "requireuser", "currentuser",
	"role_required", "requires_role", "has_role", "admin_required",
	"api_key", "apikey", "x-api-key",
	"oauth", "oidc",
	"middleware", "guard", "protected", "secured",
}

type apiEndpoint struct {
	id      int
	file    string
	line    int
	method  string
	pattern string
}

// isAuthenticatedControl reports whether any of an endpoint's recorded
// decorator controls looks like an authentication or authorization check.
func isAuthenticatedControl(controls []string) bool {
	for _, c := range controls {
		lc := strings.ToLower(c)
		for _, kw := range authKeywords {
			if strings.Contains(lc, kw) {
				return true
			}
		}
	}
	return false
}

// MissingAPIAuthRule flags state-changing HTTP endpoints (POST, PUT, PATCH,
// DELETE) that carry no recognized authentication or authorization control,
// grounded on original_source's
// theauditor/rules/security/api_auth_detector.py find_missing_api_authentication.
func MissingAPIAuthRule(reg *schema.Registry) Rule {
	return &BaseRule{
		RuleName:  "missing-api-authentication",
		RuleCat:   "security",
		RuleScope: ScopeDatabase,
		AnalyzeFunc: func(ctx *Context) ([]Finding, error) {
			endpoints, err := loadAPIEndpoints(ctx.DB, reg)
			if err != nil {
				return nil, err
			}
			if len(endpoints) == 0 {
				return nil, nil
			}
			controlsByEndpoint, err := loadEndpointControls(ctx.DB, reg)
			if err != nil {
				return nil, err
			}

			stateChanging := map[string]bool{"POST": true, "PUT": true, "PATCH": true, "DELETE": true}

			var findings []Finding
			for _, ep := range endpoints {
				if !stateChanging[strings.ToUpper(ep.method)] {
					continue
				}
				if isAuthenticatedControl(controlsByEndpoint[ep.id]) {
					continue
				}
				findings = append(findings, Finding{
					RuleName:   "MISSING_API_AUTHENTICATION",
					FilePath:   ep.file,
					Line:       ep.line,
					Severity:   SeverityHigh,
					Confidence: ConfidenceHigh,
					Category:   "security",
					Message:    fmt.Sprintf("state-changing endpoint lacks authentication: %s %s", strings.ToUpper(ep.method), ep.pattern),
					CWE:        "CWE-306",
					Details: map[string]string{
						"method":  ep.method,
						"pattern": ep.pattern,
					},
				})
			}
			return findings, nil
		},
	}
}

func loadAPIEndpoints(db *sql.DB, reg *schema.Registry) ([]apiEndpoint, error) {
	query, err := reg.BuildQuery("api_endpoints", []string{"id", "file", "line", "method", "pattern"}, "", "file, line")
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var endpoints []apiEndpoint
	for rows.Next() {
		var ep apiEndpoint
		if err := rows.Scan(&ep.id, &ep.file, &ep.line, &ep.method, &ep.pattern); err != nil {
			return nil, err
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, rows.Err()
}

// loadEndpointControls reads api_endpoint_controls separately from
// api_endpoints and joins in Go: schema.Registry.BuildQuery only builds
// single-table queries.
func loadEndpointControls(db *sql.DB, reg *schema.Registry) (map[int][]string, error) {
	query, err := reg.BuildQuery("api_endpoint_controls", []string{"endpoint_id", "control_name"}, "", "endpoint_id")
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	controls := make(map[int][]string)
	for rows.Next() {
		var endpointID int
		var name string
		if err := rows.Scan(&endpointID, &name); err != nil {
			return nil, err
		}
		controls[endpointID] = append(controls[endpointID], name)
	}
	return controls, rows.Err()
}
