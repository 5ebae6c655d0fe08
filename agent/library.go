package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Library serves the function calls of a model.
type Library func(context.Context, *genai.FunctionCall) *genai.FunctionResponse

// Function is a function a model can call.
type Function interface {
	// Declaration declares this function to the model.
	Declaration() *genai.FunctionDeclaration
	// Call calls this function.
	Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// Func implements a simple Function.
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, args map[string]any) (any, error)
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }

// Call runs the function, errors are reported to the model in the response.
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	resp := &genai.FunctionResponse{ID: id, Name: f.Decl.Name}
	out, err := f.Func(ctx, args)
	if err != nil {
		resp.Response = map[string]any{"error": err.Error()}
		return resp
	}
	resp.Response = map[string]any{"output": out}
	return resp
}

// NewLibrary dispatches function calls by name.
func NewLibrary[T Function](functions []T) Library {
	return func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
		for _, f := range functions {
			if f.Declaration().Name == call.Name {
				return f.Call(ctx, call.ID, call.Args)
			}
		}
		return &genai.FunctionResponse{
			ID:   call.ID,
			Name: call.Name,
			Response: map[string]any{
				"error": fmt.Sprintf("unknown function %s", call.Name),
			},
		}
	}
}

// NewDeclaration returns the declarations of functions.
func NewDeclaration[T Function](functions []T) []*genai.FunctionDeclaration {
	result := make([]*genai.FunctionDeclaration, 0, len(functions))
	for _, f := range functions {
		result = append(result, f.Declaration())
	}
	return result
}
