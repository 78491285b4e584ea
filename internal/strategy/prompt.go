package strategy

import (
	"fmt"
	"strings"
)

const tutorSystemPrompt = `You are an educational tutor. Only academic/learning content. Be concise, specific, and encouraging. Never invent facts about the student.`

const examSystemPrompt = `You are an exam setter and examiner. Only academic content.`

func buildDiagnoseMessage(in TurnInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Tutor style: %s\n", in.Style)
	fmt.Fprintf(&b, "Topic: %s\n\n", in.Topic)

	b.WriteString(`Task:
1. Evaluate the student's answer to the Question (use the attached image if provided).
2. Extract the student's solution into ordered steps (strings).
3. Identify the first incorrect step index (0-based). If fully correct, wrong_step_index = -1.
4. Provide a short fix sentence for the wrong step (or reinforcement if correct).
5. If correct: is_correct = true and return ONE misconception with concept "No misconception".
6. If incorrect: return 1-3 misconceptions, each with teaching content and a 3-step hint ladder (subtle to explicit).
`)

	writeQuoted(&b, "Question", in.Question)
	writeQuoted(&b, "Student answer (typed)", in.Answer)

	fmt.Fprintf(&b, "\nStudent history:\n%s\n", in.MemoryBlock)

	return b.String()
}

func buildSocraticMessage(in TurnInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Tutor style: %s\n", in.Style)
	fmt.Fprintf(&b, "Topic: %s\n\n", in.Topic)

	b.WriteString(`Goal: continue tutoring with a Socratic approach.

Rules:
- If hint_level < 4: do NOT give the final solution.
- Choose exactly one best next question to ask now.
- Provide a 3-step hint ladder (subtle to explicit).
- If hint_level == 4: provide the full correct answer briefly in final_answer.
`)

	writeQuoted(&b, "Question", in.Question)
	writeQuoted(&b, "Student response", in.Answer)

	fmt.Fprintf(&b, "\nStudent history:\n%s\n", in.MemoryBlock)
	fmt.Fprintf(&b, "\nhint_level: %d\n", in.HintLevel)

	return b.String()
}

func buildRubricMessage(in TurnInput) string {
	var b strings.Builder

	b.WriteString(`IMPORTANT: You MUST return valid JSON. Do NOT include explanations outside JSON.

The student gave up (or needs the full answer).
1. Provide step-by-step solution_steps.
2. Provide a grading rubric with marks per step.
3. Provide minimal_fix: the smallest changes needed to correct the student's attempt.
4. Provide final_answer (concise).
`)

	fmt.Fprintf(&b, "\nTopic: %s\n", in.Topic)
	writeQuoted(&b, "Question", in.Question)
	writeQuoted(&b, "Student attempt", in.Answer)

	b.WriteString(`
Return ONLY JSON:
{
  "solution_steps": ["..."],
  "rubric": [{"step": "", "marks": 1, "expected": "", "common_errors": "", "student_error": ""}],
  "minimal_fix": "",
  "final_answer": ""
}
`)

	return b.String()
}

func buildExamMessage(topic, style string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create %d exam questions for topic: %s.\n", n, topic)
	fmt.Fprintf(&b, "Style: %s\n\n", style)
	b.WriteString(`For each question set difficulty (easy|medium|hard) and type (concept|application|trap).`)
	return b.String()
}

func buildReportMessage(topic string, pairs []QA) string {
	var b strings.Builder

	b.WriteString(`Given the student's exam responses, produce:
- summary (short)
- score_estimate (0-100)
- weakest_concepts (top 3)
- next_steps (3 bullets)
`)

	fmt.Fprintf(&b, "\nExam topic: %s\n\nQ/A pairs:\n", topic)
	for _, p := range pairs {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", p.Q, p.A)
	}

	return b.String()
}

func buildNotesMessage(notes, topic, style string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\nPreferred style: %s\n\n", topic, style)
	b.WriteString(`From the notes below, generate 10 practice questions.
Include a mix:
- 4 conceptual
- 4 application/problem-solving
- 2 tricky misconception-trap questions
`)
	writeQuoted(&b, "Notes", notes)

	return b.String()
}

// writeQuoted renders a labeled triple-quoted block, keeping student text
// clearly delimited from instructions.
func writeQuoted(b *strings.Builder, label, text string) {
	fmt.Fprintf(b, "\n%s:\n\"\"\"%s\"\"\"\n", label, text)
}
