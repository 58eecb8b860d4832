package core

import (
	"time"

	"github.com/google/uuid"
)

// Item is one entry of a conversation record: a message, a tool call or a tool
// result. Items are treated as immutable after they are appended; a merge copies
// them into another record, it never moves them.
type Item struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   *Content  `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewItem creates an item with a fresh identifier authored by author.
func NewItem(author string, content *Content) Item {
	return Item{
		ID:        NewID(),
		Author:    author,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewSystemItem creates a system-role text item.
func NewSystemItem(author, text string) Item {
	return NewItem(author, &Content{Role: RoleSystem, Parts: []Part{TextPart{Text: text}}})
}

// NewUserItem creates a user-authored text item.
func NewUserItem(text string) Item {
	return NewItem(RoleUser, &Content{Role: RoleUser, Parts: []Part{TextPart{Text: text}}})
}

// NewAssistantItem creates an assistant text item authored by an agent.
func NewAssistantItem(author, text string) Item {
	return NewItem(author, &Content{Role: RoleAssistant, Parts: []Part{TextPart{Text: text}}})
}

// NewFunctionCallItem records the model asking for one or more tool calls.
func NewFunctionCallItem(author string, calls ...FunctionCall) Item {
	parts := make([]Part, 0, len(calls))
	for _, fc := range calls {
		parts = append(parts, FunctionCallPart{FunctionCall: fc})
	}
	return NewItem(author, &Content{Role: RoleAssistant, Parts: parts})
}

// NewFunctionResponseItem records the result (or error) of a tool call.
func NewFunctionResponseItem(author, callID, name string, result any, err error) Item {
	fr := FunctionResponse{ID: callID, Name: name, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	return NewItem(author, &Content{Role: RoleTool, Parts: []Part{FunctionResponsePart{FunctionResponse: fr}}})
}

// NewID returns a new UUID based identifier for items and turns.
func NewID() string { return uuid.NewString() }

// Role returns the content role or the empty string for content-less items.
func (i Item) Role() string {
	if i.Content == nil {
		return ""
	}
	return i.Content.Role
}

// Text returns the concatenated text parts.
func (i Item) Text() string {
	if i.Content == nil {
		return ""
	}
	return i.Content.Text()
}

// IsInstruction reports whether the item is a system-role priming item.
func (i Item) IsInstruction() bool { return i.Role() == RoleSystem }

// GetFunctionCalls returns the function call parts in order.
func (i Item) GetFunctionCalls() []FunctionCall {
	if i.Content == nil {
		return nil
	}
	var calls []FunctionCall
	for _, p := range i.Content.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// GetFunctionResponses returns the function response parts in order.
func (i Item) GetFunctionResponses() []FunctionResponse {
	if i.Content == nil {
		return nil
	}
	var responses []FunctionResponse
	for _, p := range i.Content.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// IsToolItem reports whether the item carries a function call or a function
// response.
func (i Item) IsToolItem() bool {
	return len(i.GetFunctionCalls()) > 0 || len(i.GetFunctionResponses()) > 0
}

// Clone returns a copy whose Content can be modified without touching the
// original.
func (i Item) Clone() Item {
	if i.Content != nil {
		c := i.Content.clone()
		i.Content = &c
	}
	return i
}
