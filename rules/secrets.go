package rules

import (
	"github.com/TheAuditorTool/auditor-core/schema"
)

// HardcodedSecretRule surfaces extract/common.go's entropy-based secret
// scan as findings. The scan itself records each candidate into
// extraction_errors under phase "secret_scan" rather than a dedicated
// table, since a detected secret is an extraction-time observation, not a
// structural fact about the file; this rule is what turns those
// observations into reportable findings.
func HardcodedSecretRule(reg *schema.Registry) Rule {
	return &BaseRule{
		RuleName:  "hardcoded-secret",
		RuleCat:   "security",
		RuleScope: ScopeDatabase,
		AnalyzeFunc: func(ctx *Context) ([]Finding, error) {
			query, err := reg.BuildQuery(
				"extraction_errors",
				[]string{"file", "message"},
				"phase = 'secret_scan'",
				"file",
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
				var file, message string
				if err := rows.Scan(&file, &message); err != nil {
					return nil, err
				}
				findings = append(findings, Finding{
					RuleName:   "HARDCODED_SECRET",
					FilePath:   file,
					Severity:   SeverityHigh,
					Confidence: ConfidenceMedium,
					Category:   "security",
					Message:    message,
					CWE:        "CWE-798",
				})
			}
			return findings, rows.Err()
		},
	}
}
