package testutil

import (
	"fmt"
	"time"

	"github.com/hupe1980/agentrelay/core"
)

// ItemBuilder provides a fluent helper for constructing items in tests.
// Example:
//
//	it := NewItemBuilder().Author("Greeting").AssistantText("hello").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type ItemBuilder struct {
	author        string
	id            string
	noID          bool
	role          string
	textParts     []string
	funcCalls     []core.FunctionCall
	funcResponses []core.FunctionResponse
	customParts   []core.Part
}

// NewItemBuilder creates a builder with default author "agent".
func NewItemBuilder() *ItemBuilder { return &ItemBuilder{author: "agent"} }

// Author sets the author name (chainable).
func (b *ItemBuilder) Author(a string) *ItemBuilder { b.author = a; return b }

// ID overrides the generated identifier (chainable).
func (b *ItemBuilder) ID(id string) *ItemBuilder { b.id = id; return b }

// NoID builds a malformed item without identifier (chainable).
func (b *ItemBuilder) NoID() *ItemBuilder { b.noID = true; return b }

// SystemText appends a system role text part (chainable).
func (b *ItemBuilder) SystemText(t string) *ItemBuilder {
	b.role = core.RoleSystem
	b.textParts = append(b.textParts, t)
	return b
}

// UserText appends a user role text part (chainable).
func (b *ItemBuilder) UserText(t string) *ItemBuilder {
	b.role = core.RoleUser
	b.textParts = append(b.textParts, t)
	return b
}

// AssistantText appends an assistant role text part (chainable).
func (b *ItemBuilder) AssistantText(t string) *ItemBuilder {
	b.role = core.RoleAssistant
	b.textParts = append(b.textParts, t)
	return b
}

// AddPart appends a custom content part (chainable).
func (b *ItemBuilder) AddPart(p core.Part) *ItemBuilder {
	b.customParts = append(b.customParts, p)
	return b
}

// FunctionCall adds a function call part (chainable).
func (b *ItemBuilder) FunctionCall(id, name, args string) *ItemBuilder {
	b.funcCalls = append(b.funcCalls, core.FunctionCall{ID: id, Name: name, Arguments: args})
	return b
}

// FunctionResponse adds a function response part (chainable).
func (b *ItemBuilder) FunctionResponse(id, name string, result any, err error) *ItemBuilder {
	fr := core.FunctionResponse{ID: id, Name: name, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	b.funcResponses = append(b.funcResponses, fr)
	return b
}

// Build constructs the core.Item value.
func (b *ItemBuilder) Build() core.Item {
	role := b.role
	parts := make([]core.Part, 0, len(b.textParts)+len(b.funcCalls)+len(b.funcResponses)+len(b.customParts))
	for _, t := range b.textParts {
		parts = append(parts, core.TextPart{Text: t})
	}
	for _, fc := range b.funcCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: fc})
	}
	for _, fr := range b.funcResponses {
		parts = append(parts, core.FunctionResponsePart{FunctionResponse: fr})
	}
	parts = append(parts, b.customParts...)
	if role == "" {
		switch {
		case len(b.funcCalls) > 0:
			role = core.RoleAssistant
		case len(b.funcResponses) > 0:
			role = core.RoleTool
		default:
			role = core.RoleAssistant
		}
	}

	id := b.id
	if id == "" && !b.noID {
		id = core.NewID()
	}
	return core.Item{
		ID:        id,
		Author:    b.author,
		Content:   &core.Content{Role: role, Parts: parts},
		Timestamp: time.Now().UTC(),
	}
}

// Conversation builds n alternating user/assistant items with identifiers
// prefix-0 ... prefix-(n-1).
func Conversation(author, prefix string, n int) []core.Item {
	items := make([]core.Item, 0, n)
	for i := 0; i < n; i++ {
		b := NewItemBuilder().Author(author).ID(fmt.Sprintf("%s-%d", prefix, i))
		if i%2 == 0 {
			b.UserText(fmt.Sprintf("user message %d", i))
		} else {
			b.AssistantText(fmt.Sprintf("assistant message %d", i))
		}
		items = append(items, b.Build())
	}
	return items
}

// RecordOf wraps items in a record without validation, so malformed fixtures
// survive.
func RecordOf(owner string, items ...core.Item) *core.Record {
	return core.NewRecordFromItems(owner, items)
}
