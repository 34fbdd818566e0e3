package engine

// Fixed terminal messages. The refusal and insufficient-information texts
// are user-facing contract: handlers and tests match on them, and the
// acceptance check looks for the "don't have enough" phrase to catch models
// echoing a refusal back out of supplied context.
const (
	guardrailMessage = "I can only help with questions about your resume, career guidance, or job searches. Please ask a career-related question."

	insufficientInfoMessage = "I don't have enough information to answer that. Try rephrasing your question or uploading a more detailed resume."

	apologyMessage = "Something went wrong while answering your question. Please try again."
)

// System prompt templates, one per synthesis strategy. Each receives the
// strategy's context block via fmt.Sprintf.
const (
	resumePromptTemplate = `You are a career assistant answering questions about the user's resume.
Answer using only the resume excerpts below. Be specific and cite concrete details from the excerpts.
If the excerpts do not contain the answer, say you don't have enough information.

Resume excerpts:
%s`

	webPromptTemplate = `You are a career assistant. Answer the user's question using the web search results below.
Be specific, mention sources where useful, and keep the answer focused on the question.
If the results do not contain the answer, say you don't have enough information.

Web results:
%s`

	combinedPromptTemplate = `You are a career assistant. Answer the user's question using both their resume excerpts and current web search results below.
Ground personal details in the resume and current facts in the web results.
If neither contains the answer, say you don't have enough information.

Resume excerpts:
%s

Web results:
%s`

	jobPromptTemplate = `You are a career assistant presenting job search results.
Summarize the most relevant postings below for the user, matching them against the skill context from their resume where possible.
Include titles, employers, locations, and application links. If there are no matching jobs, say so plainly.

Job postings:
%s

Resume skill context:
%s`
)
