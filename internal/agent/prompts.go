package agent

import (
	"fmt"
	"strings"

	"github.com/temirov/scout/internal/commands"
	"github.com/temirov/scout/internal/llm"
)

const (
	understandingSystemPrompt = "You help people explore code repositories. Identify which directories and files a question is about."
	understandingUserFormat   = "Question: %s\n\nList the directories and files worth exploring as JSON in the form {\"tree\": [\"dir\"], \"show_file\": [\"file\"]}."

	planningSystemPrompt = "You plan how to answer questions about a code repository. Two commands are available: " +
		"\"tree <path>\" lists a directory recursively and \"show_file <path>\" prints a file. " +
		"Paths are relative to the current working directory."
	planningUserFormat      = "Question: %s\n\nReturn only a JSON array of commands, for example [\"tree .\", \"show_file go.mod\"]."
	planningIntentFormat    = "\n\nWhat the question is about:\n%s"
	planningRetryFormat     = "\n\nA previous attempt ran these commands:\n%s\n\nIts answer was rejected by review:\n%s\n\nPlan different or additional commands to close the gap."
	planningPreviousCommand = "- %s\n"

	answeringSystemPrompt = "You analyze code repositories. Answer the question using only the command results provided."
	answeringUserFormat   = "Question: %s\n\nCommand results:\n\n%s\nBased on the above information, provide a complete answer to the question."
	answeringResultFormat = "## Command: %s\n\n```\n%s\n```\n\n"

	reviewingSystemPrompt = "You are a critical reviewer. Evaluate whether an answer adequately addresses a question."
	reviewingUserFormat   = "Question: %s\n\nAnswer: %s\n\nDoes this answer adequately address the question? Respond with 'YES' if it does, or 'NO: <reason>' if it does not."
)

func understandingMessages(question string) []llm.Message {
	return []llm.Message{
		llm.SystemMessage(understandingSystemPrompt),
		llm.UserMessage(fmt.Sprintf(understandingUserFormat, question)),
	}
}

func planningMessages(session *Session) []llm.Message {
	var userPrompt strings.Builder
	fmt.Fprintf(&userPrompt, planningUserFormat, session.Question)
	if intent := strings.TrimSpace(session.Intent); intent != "" {
		fmt.Fprintf(&userPrompt, planningIntentFormat, intent)
	}
	if session.ReviewVerdict != "" {
		var previousCommands strings.Builder
		for _, command := range session.Plan {
			fmt.Fprintf(&previousCommands, planningPreviousCommand, command)
		}
		fmt.Fprintf(&userPrompt, planningRetryFormat, strings.TrimSuffix(previousCommands.String(), "\n"), session.ReviewVerdict)
	}
	return []llm.Message{
		llm.SystemMessage(planningSystemPrompt),
		llm.UserMessage(userPrompt.String()),
	}
}

func answeringMessages(question string, results []commands.CommandResult) []llm.Message {
	var resultsText strings.Builder
	for _, result := range results {
		fmt.Fprintf(&resultsText, answeringResultFormat, result.Command, result.Output)
	}
	return []llm.Message{
		llm.SystemMessage(answeringSystemPrompt),
		llm.UserMessage(fmt.Sprintf(answeringUserFormat, question, resultsText.String())),
	}
}

func reviewingMessages(question string, answer string) []llm.Message {
	return []llm.Message{
		llm.SystemMessage(reviewingSystemPrompt),
		llm.UserMessage(fmt.Sprintf(reviewingUserFormat, question, answer)),
	}
}
