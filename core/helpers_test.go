package core

import "context"

type testLogger struct{}

func (l testLogger) Debug(string, ...any) {}
func (l testLogger) Info(string, ...any)  {}
func (l testLogger) Warn(string, ...any)  {}
func (l testLogger) Error(string, ...any) {}

type stubAgent struct {
	name   string
	record *Record
}

func newStubAgent(name string) *stubAgent {
	return &stubAgent{name: name, record: NewRecord(name)}
}

func (a *stubAgent) Name() string        { return a.name }
func (a *stubAgent) Description() string { return "stub " + a.name }
func (a *stubAgent) Record() *Record     { return a.record }
func (a *stubAgent) Activate(tc *TurnContext) (*ActivationReport, error) {
	return &ActivationReport{Agent: a.name}, nil
}
func (a *stubAgent) HandleTurn(tc *TurnContext, input *Item, choice ToolChoice) (*TurnResult, error) {
	return &TurnResult{}, nil
}

type memArtifacts struct{ data map[string]map[string][]byte }

func (a *memArtifacts) Save(sid, aid string, b []byte) error {
	if a.data == nil {
		a.data = map[string]map[string][]byte{}
	}
	if _, ok := a.data[sid]; !ok {
		a.data[sid] = map[string][]byte{}
	}
	a.data[sid][aid] = append([]byte{}, b...)
	return nil
}
func (a *memArtifacts) Get(sid, aid string) ([]byte, error) { return a.data[sid][aid], nil }
func (a *memArtifacts) List(sid string) ([]string, error) {
	res := []string{}
	for k := range a.data[sid] {
		res = append(res, k)
	}
	return res, nil
}
func (a *memArtifacts) Delete(sid, aid string) error { delete(a.data[sid], aid); return nil }

func newTestState(object string, names ...string) *TaskState {
	agents := make([]Agent, 0, len(names))
	for _, n := range names {
		agents = append(agents, newStubAgent(n))
	}
	reg, err := NewRegistry(agents...)
	if err != nil {
		panic(err)
	}
	st, err := NewTaskState(object, reg)
	if err != nil {
		panic(err)
	}
	return st
}

func newTestTurn(st *TaskState) *TurnContext {
	return NewTurnContext(context.Background(), "sess-1", st, &memArtifacts{}, 0, testLogger{})
}
