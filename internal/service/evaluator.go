package service

import (
	"context"
	"strings"

	"github.com/bughuntlab/bughunt-backend/internal/judge"
	"github.com/bughuntlab/bughunt-backend/internal/model"
)

// userCodePlaceholder is the single substitution point inside a question's
// wrapper template.
const userCodePlaceholder = "__USER_CODE__"

// CodeEvaluator reduces one submitted solution to a verdict.
type CodeEvaluator interface {
	Evaluate(ctx context.Context, lang model.Language, block model.LanguageBlock, code string) (model.Verdict, error)
}

// Evaluator runs a solution against a question's hidden test cases through
// the judge client and reduces them to a single verdict.
type Evaluator struct {
	client judge.Client
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator(client judge.Client) *Evaluator {
	return &Evaluator{client: client}
}

// Evaluate judges the code against every test case in order, stopping at
// the first failure. Accepted cases are additionally re-compared with
// normalized output as a defense against a lenient remote judge. Judge
// transport errors propagate (wrapping judge.ErrUnavailable); no verdict is
// guessed for them.
func (e *Evaluator) Evaluate(ctx context.Context, lang model.Language, block model.LanguageBlock, code string) (model.Verdict, error) {
	source := code
	if block.WrapperCode != "" {
		source = strings.Replace(block.WrapperCode, userCodePlaceholder, code, 1)
	}

	for _, tc := range block.TestCases {
		result, err := e.client.Evaluate(ctx, judge.Submission{
			SourceCode:     source,
			Language:       lang,
			Stdin:          tc.Input,
			ExpectedOutput: tc.Output,
		})
		if err != nil {
			return "", err
		}

		if result.StatusID != judge.StatusAccepted {
			return verdictForStatus(result.StatusID), nil
		}

		if normalizeOutput(result.Stdout) != normalizeOutput(tc.Output) {
			return model.VerdictWrongAnswer, nil
		}
	}

	return model.VerdictAccepted, nil
}

// verdictForStatus maps a non-accepted judge status id to a verdict.
func verdictForStatus(statusID int) model.Verdict {
	switch statusID {
	case judge.StatusWrongAnswer:
		return model.VerdictWrongAnswer
	case judge.StatusTimeLimitExceeded:
		return model.VerdictTimeLimitExceeded
	case judge.StatusCompileError:
		return model.VerdictCompileError
	default:
		return model.VerdictRuntimeError
	}
}

// normalizeOutput collapses all runs of whitespace (including newlines)
// into single spaces and trims the ends.
func normalizeOutput(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
