package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Expert is a chat with a model, optionally equipped with functions.
type Expert struct {
	Name      string
	ModelName string
	Config    *genai.GenerateContentConfig
	Library   Library
	chat      *genai.Chat
}

// Start creates the chat session of the expert.
func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, e.ModelName, e.Config, nil)
	if err != nil {
		return err
	}
	e.chat = chat
	return nil
}

// Ask sends parts to the expert and returns its answer. Function calls
// requested by the model are served from the Library until the model
// answers with content.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (*genai.Content, error) {
	if e.chat == nil {
		return nil, fmt.Errorf("expert %s is not started", e.Name)
	}
	resp, err := e.chat.Send(ctx, parts...)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from expert %s", e.Name)
	}
	part0 := resp.Candidates[0].Content.Parts[0]
	if part0.FunctionCall != nil {
		if e.Library == nil {
			return nil, fmt.Errorf("expert %s doesn't know how to make function calls", e.Name)
		}
		// Answer the call, then ask again until there is a real response.
		return e.Ask(ctx, &genai.Part{FunctionResponse: e.Library(ctx, part0.FunctionCall)})
	}
	return resp.Candidates[0].Content, nil
}
