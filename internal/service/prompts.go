package service

import (
	"fmt"
	"strings"
)

const notesPrompt = `You turn a finished coding practice conversation into a revision flashcard.
Reply with a single JSON object and nothing else, using exactly these keys:
{
  "category": "the pattern used, e.g. Two Pointers, BFS, Dynamic Programming",
  "approach": "one plain sentence describing the key idea",
  "complexity": "Time: O(?), Space: O(?)",
  "codeSnippet": "the 3-5 lines that carry the core logic",
  "optimalSolution": "a complete, runnable optimal solution in the requested language"
}`

const coachRules = `You are a blunt but friendly practice partner working through a coding interview problem with the user.
Your job is to make them do the thinking. Do not hand over the algorithm or the code up front.

How to behave:
- Keep replies short, one or two sentences, casual tone.
- Small talk gets small talk back. Don't ask "how can I help".
- When they say they are stuck, ask what they tried or what the brute force would be before giving any hint. Never name the technique first.
- If they keep asking for the full solution, push back at most three times, then give it.

Diagrams: when asked to draw or visualize a structure, answer with a mermaid code block only.
Use top-down graphs, quote labels that contain brackets or punctuation, and never draw nodes for null children.`

// coachPrompt builds the system message for the chat relay around the problem
// the user currently has open
func coachPrompt(pc ProblemContext) string {
	var b strings.Builder

	b.WriteString(coachRules)
	b.WriteString("\n\nCurrent problem:\n")
	fmt.Fprintf(&b, "- Title: %s", pc.Title)
	if pc.Difficulty != "" {
		fmt.Fprintf(&b, " (%s)", pc.Difficulty)
	}
	b.WriteString("\n")

	if desc := truncateRunes(pc.Description, maxDescriptionRunes); desc != "" {
		fmt.Fprintf(&b, "- Description: %s\n", desc)
	}

	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n]) + "..."
}
