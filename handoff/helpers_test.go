package handoff

import "github.com/hupe1980/agentrelay/core"

type stub struct {
	name   string
	record *core.Record
}

func stubAgent(name string) *stub { return &stub{name: name, record: core.NewRecord(name)} }

func (s *stub) Name() string         { return s.name }
func (s *stub) Description() string  { return "" }
func (s *stub) Record() *core.Record { return s.record }
func (s *stub) Activate(*core.TurnContext) (*core.ActivationReport, error) {
	return &core.ActivationReport{Agent: s.name}, nil
}
func (s *stub) HandleTurn(*core.TurnContext, *core.Item, core.ToolChoice) (*core.TurnResult, error) {
	return &core.TurnResult{}, nil
}
