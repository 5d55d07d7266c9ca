package solver

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Prompt templates are plain files with {{PLACEHOLDER}} markers so they
// can be versioned and swapped without a rebuild. When a file is absent
// the built-in default is used.
const (
	plannerPromptFile  = "planner.md"
	executorPromptFile = "executor.md"
	verifierPromptFile = "verifier.md"
)

type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

func (pm *PromptManager) load(name, fallback string) string {
	if pm.Directory == "" {
		return fallback
	}
	path := filepath.Join(pm.Directory, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Failed to read prompt file %s: %v", path, err)
		}
		return fallback
	}
	return string(data)
}

func render(template string, vars map[string]string) string {
	out := template
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}

// PlannerPrompt builds the planning prompt for a question.
func (pm *PromptManager) PlannerPrompt(question string) string {
	return render(pm.load(plannerPromptFile, defaultPlannerPrompt), map[string]string{
		"QUESTION": question,
	})
}

// ExecutorPrompt builds the execution prompt from a question and the
// plan produced in the same attempt.
func (pm *PromptManager) ExecutorPrompt(question, planText string) string {
	return render(pm.load(executorPromptFile, defaultExecutorPrompt), map[string]string{
		"QUESTION": question,
		"PLAN":     planText,
	})
}

// VerifierPrompt builds the verification prompt from a question and the
// executor's result. Intermediate notes are appended only when present.
func (pm *PromptManager) VerifierPrompt(question string, exec ExecutionResult) string {
	prompt := render(pm.load(verifierPromptFile, defaultVerifierPrompt), map[string]string{
		"QUESTION":        question,
		"PROPOSED_ANSWER": exec.ProposedAnswer,
		"EXPLANATION":     exec.Explanation,
	})
	if exec.Intermediate != "" {
		prompt += "\nINTERMEDIATE_NOTES: " + exec.Intermediate + "\n"
	}
	return prompt
}

const defaultPlannerPrompt = `[PLANNER]
You are a planner for small math and logic word problems.

Task:
- Read the QUESTION.
- Produce a short numbered plan with 3-6 steps to solve it.
- Focus on extracting quantities, understanding relationships, computing,
  checking constraints (like non-negative counts, correct time ranges),
  and formatting the final answer.

Output format:
- Only the numbered plan as plain text, e.g.
  1. ...
  2. ...
  3. ...

QUESTION: {{QUESTION}}
`

const defaultExecutorPrompt = `[EXECUTOR]
You are an executor for math and logic word problems.

You will be given:
- QUESTION: the user's problem.
- PLAN: a numbered plan of steps to solve it.

Task:
- Follow the PLAN step-by-step.
- Do the necessary calculations.
- Keep track of intermediate values.
- Produce a proposed final answer and a short explanation.

IMPORTANT:
- Return ONLY valid JSON.
- Do NOT include any markdown fences or extra text.

JSON schema to return:
{
  "proposed_answer": "<short final answer as a string>",
  "explanation": "<short explanation including key intermediate steps>",
  "intermediate": "<optional free-form notes or parsed info>"
}

QUESTION: {{QUESTION}}

PLAN:
{{PLAN}}
`

const defaultVerifierPrompt = `[VERIFIER]
You are a strict verifier for math and logic word problems.

You will be given:
- QUESTION: the original problem.
- PROPOSED_ANSWER: the answer string.
- EXPLANATION: a short explanation with intermediate reasoning.

Your job:
- Check if the explanation actually solves the QUESTION.
- Check if the arithmetic and logical steps are correct.
- Check if constraints (time ranges, non-negative counts, totals) are satisfied.
- Decide whether the solution is acceptable.

VERY IMPORTANT:
- Return exactly ONE JSON object.
- Do NOT repeat any part of the JSON.
- Do NOT repeat checks.
- Do NOT add any text before or after the JSON.
- Do NOT include markdown fences.

Output:
Return ONLY valid JSON with this schema:
{
  "passed": true or false,
  "checks": [
    {
      "check_name": "<short name of this check>",
      "passed": true or false,
      "details": "<one-line description>"
    }
  ],
  "issues": "<short description of problems if any, empty string if none>"
}

QUESTION: {{QUESTION}}
PROPOSED_ANSWER: {{PROPOSED_ANSWER}}
EXPLANATION: {{EXPLANATION}}
`
