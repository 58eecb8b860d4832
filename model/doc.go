// Package model defines the reply-service boundary: the provider agnostic
// request/response shapes agents use to obtain the next conversational turn.
//
// Core goals:
//   - Unify streaming and non-streaming generation behind one interface
//   - Carry the tool choice of a single call (auto vs none) explicitly in the
//     Request, never as ambient state
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (model/openai, model/anthropic) implement Model so agents stay
// decoupled from vendor SDKs.
package model
