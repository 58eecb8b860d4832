package core

import (
	"errors"
	"testing"
)

func TestTaskStateSummarizeDefaults(t *testing.T) {
	st := newTestState("keys", "Greeting")
	want := "object_found: false\n" +
		"object_image: no image\n" +
		"object_location: unknown\n" +
		"object_to_find: keys\n" +
		"prev_agent: no previous agent\n" +
		"user_location: unknown\n"
	if got := st.Summarize(); got != want {
		t.Fatalf("unexpected summary:\n%s\nwant:\n%s", got, want)
	}
}

func TestTaskStateSummarizePopulated(t *testing.T) {
	st := newTestState("keys", "Greeting")
	st.UserLocation = "kitchen"
	st.ObjectFound = true
	st.ObjectLocation = "under the sofa"
	st.ObjectImage = "artifact://img-1"
	st.PrevAgent = "Greeting"
	want := "object_found: true\n" +
		"object_image: artifact://img-1\n" +
		"object_location: under the sofa\n" +
		"object_to_find: keys\n" +
		"prev_agent: Greeting\n" +
		"user_location: kitchen\n"
	if got := st.Summarize(); got != want {
		t.Fatalf("unexpected summary:\n%s\nwant:\n%s", got, want)
	}
}

func TestTaskStateSummarizeDeterministic(t *testing.T) {
	a := newTestState("wallet", "Greeting")
	b := newTestState("wallet", "Greeting")
	a.UserLocation, b.UserLocation = "hall", "hall"
	for i := 0; i < 20; i++ {
		if a.Summarize() != b.Summarize() {
			t.Fatalf("summaries differ for equal states")
		}
	}
}

func TestNewTaskStateValidation(t *testing.T) {
	reg, _ := NewRegistry(newStubAgent("Greeting"))
	if _, err := NewTaskState("", reg); !errors.Is(err, ErrMissingObject) || !IsConfigError(err) {
		t.Fatalf("expected missing object config error, got %v", err)
	}
	if _, err := NewTaskState("keys", nil); !errors.Is(err, ErrNoRegistry) {
		t.Fatalf("expected no registry error, got %v", err)
	}
}

func TestTaskStatePreviousAgent(t *testing.T) {
	st := newTestState("keys", "Greeting", "Finder")
	if _, ok := st.PreviousAgent(); ok {
		t.Fatalf("expected no previous agent")
	}
	st.PrevAgent = "Greeting"
	a, ok := st.PreviousAgent()
	if !ok || a.Name() != "Greeting" {
		t.Fatalf("expected Greeting, got %v %v", a, ok)
	}
	st.PrevAgent = "Ghost"
	if _, ok := st.PreviousAgent(); ok {
		t.Fatalf("unknown previous agent must not resolve")
	}
}

func TestTaskStateDeltaPreviewAndApply(t *testing.T) {
	st := newTestState("keys", "Greeting")
	loc := "garage"
	d := TaskStateDelta{UserLocation: &loc}
	if d.IsEmpty() {
		t.Fatalf("delta should not be empty")
	}
	pv := st.Preview(d)
	if pv.UserLocation != "garage" || st.UserLocation != "" {
		t.Fatalf("preview leaked into state: %q / %q", pv.UserLocation, st.UserLocation)
	}
	if pv.ObjectToFind() != "keys" {
		t.Fatalf("preview lost object: %q", pv.ObjectToFind())
	}

	found := true
	other := "attic"
	d.Merge(TaskStateDelta{ObjectFound: &found, UserLocation: &other})
	st.Apply(d)
	if st.UserLocation != "attic" || !st.ObjectFound {
		t.Fatalf("apply mismatch: %+v", st.Snapshot())
	}
	if !(TaskStateDelta{}).IsEmpty() {
		t.Fatalf("zero delta must be empty")
	}
}
