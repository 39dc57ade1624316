// Package prompts holds the prompt templates and canned interviewer lines.
// Every template instructs the model to answer with a bare JSON object; the
// caller validates the required keys.
package prompts

import (
	"fmt"
	"math/rand"
	"strings"
)

const resumeDetailsTemplate = `You are screening a resume for an interview.
Extract the candidate's full name and a concise summary of their strongest
qualifications (skills, roles, achievements).

Resume:
%s

Respond with a JSON object with exactly these keys:
"name": the candidate's full name,
"resume_highlights": a short paragraph of their key qualifications.`

const nextQuestionTemplate = `You are a professional job interviewer.

Previous question: %s
Candidate's answer: %s
Job description: %s
Resume highlights: %s

Ask one focused follow-up interview question that probes deeper into the
candidate's fit for the role. Keep it under two sentences.

Respond with a JSON object with exactly this key:
"next_question": the question to ask next.`

const feedbackTemplate = `You are evaluating one answer in a job interview.

Question: %s
Candidate's answer: %s
Job description: %s
Resume highlights: %s

Assess how well the answer addresses the question and the role's
requirements. Score from 0 (no answer) to 10 (outstanding).

Respond with a JSON object with exactly these keys:
"feedback": two or three sentences of constructive feedback,
"score": the numeric score.`

const overallSummaryTemplate = `You are writing the final evaluation of a completed job interview.

Candidate: %s
Job description: %s
Resume highlights: %s
Questions asked: %d
Overall score: %.2f out of 10

Interview transcript with per-answer scores:
%s

Respond with a JSON object with exactly these keys:
"overall_feedback": a paragraph summarizing the candidate's performance,
"key_strengths": a list of strengths shown in the interview,
"areas_for_improvement": a list of concrete improvement areas,
"recommendation": one of "strong hire", "hire", "no hire".`

// ResumeDetails builds the prompt that extracts name and highlights from
// resume text.
func ResumeDetails(resumeText string) string {
	return fmt.Sprintf(resumeDetailsTemplate, resumeText)
}

// NextQuestion builds the follow-up question prompt.
func NextQuestion(previousQuestion, answer, jobDescription, highlights string) string {
	return fmt.Sprintf(nextQuestionTemplate, previousQuestion, answer, jobDescription, highlights)
}

// Feedback builds the per-answer scoring prompt.
func Feedback(question, answer, jobDescription, highlights string) string {
	return fmt.Sprintf(feedbackTemplate, question, answer, jobDescription, highlights)
}

// OverallSummary builds the end-of-interview evaluation prompt.
func OverallSummary(name, jobDescription, highlights string, totalQuestions int, overallScore float64, transcript string) string {
	return fmt.Sprintf(overallSummaryTemplate, name, jobDescription, highlights, totalQuestions, overallScore, transcript)
}

// DefaultOpeningQuestion is the fallback when a session somehow has no
// assistant message yet. A started session always gets a greeting first, so
// reaching for this indicates a logic gap worth a warning log.
const DefaultOpeningQuestion = "Tell me about yourself and your experience."

var greetings = []string{
	"Hi %s, welcome to this interview! My name is %s and I'll be your interviewer today. Let's get started!\n\nCan you tell me a bit about yourself and what you're looking for in a job?",
	"Hi %s, welcome to this interview! My name is %s and I'll be your interviewer today. Let's get started!\n\nCan you give me a quick overview of your background and experience?",
	"Hi %s, welcome to this interview! My name is %s and I'll be your interviewer today. Let's get started!\n\nCan you tell me a little bit about your goals and aspirations?",
	"Hi %s, welcome to this interview! My name is %s and I'll be your interviewer today. Let's get started!\n\nCan you briefly introduce yourself and tell me about your achievements and skills?",
}

var thanksMessages = []string{
	"Thanks for taking the time to chat today, %s. I really enjoyed our conversation. Wishing you all the best in your career!",
	"It was great speaking with you, %s. I hope the interview was a valuable experience for you. Good luck moving forward!",
	"Appreciate your time today, %s. Best of luck with the rest of your job applications and interviews!",
	"Thank you for the engaging conversation, %s. I wish you success in your job hunt and future endeavors!",
	"It was a pleasure talking to you, %s. I hope the interview helped clarify your goals. All the best!",
	"Thanks again for your time, %s. I hope you found the interview insightful. Good luck on your journey ahead!",
}

// Greeting picks a random opening line addressed to the candidate.
func Greeting(candidateName, interviewerName string) string {
	if strings.TrimSpace(interviewerName) == "" {
		interviewerName = "Alex"
	}
	return fmt.Sprintf(greetings[rand.Intn(len(greetings))], candidateName, interviewerName)
}

// Thanks picks a random closing line addressed to the candidate.
func Thanks(candidateName string) string {
	return fmt.Sprintf(thanksMessages[rand.Intn(len(thanksMessages))], candidateName)
}
