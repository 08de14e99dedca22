package rules

import (
	"fmt"

	"github.com/TheAuditorTool/auditor-core/schema"
)

// HardcodedJWTSecretRule flags jwt.encode/decode calls whose secret key
// argument is a string literal baked into the source rather than sourced
// from the environment, per extract/python.go's extractPythonJWT, which
// already classifies secret_source as "hardcoded" for exactly this shape.
func HardcodedJWTSecretRule(reg *schema.Registry) Rule {
	return &BaseRule{
		RuleName:  "hardcoded-jwt-secret",
		RuleCat:   "security",
		RuleScope: ScopeDatabase,
		AnalyzeFunc: func(ctx *Context) ([]Finding, error) {
			query, err := reg.BuildQuery(
				"jwt_patterns",
				[]string{"file", "line", "type", "algorithms"},
				"secret_source = 'hardcoded'",
				"file, line",
			)
			if err != nil {
				return nil, err
			}

			rows, err := ctx.DB.Query(query)
			if err != nil {
				return nil, err
			}
			defer rows.Close()

			var findings []Finding
			for rows.Next() {
				var file, kind, algorithms string
				var line int
				if err := rows.Scan(&file, &line, &kind, &algorithms); err != nil {
					return nil, err
				}
				findings = append(findings, Finding{
					RuleName:   "HARDCODED_JWT_SECRET",
					FilePath:   file,
					Line:       line,
					Severity:   SeverityCritical,
					Confidence: ConfidenceHigh,
					Category:   "security",
					Message:    fmt.Sprintf("jwt.%s uses a hardcoded secret key instead of an environment-sourced one", kind),
					CWE:        "CWE-798",
					Details: map[string]string{
						"algorithms": algorithms,
					},
				})
			}
			return findings, rows.Err()
		},
	}
}
