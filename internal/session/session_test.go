package session

import "testing"

func TestGetCreatesIdleState(t *testing.T) {
	m := NewManager()
	st := m.Get(42)
	if st.Step != StepIdle || st.Period != "" || st.Importance != "" {
		t.Fatalf("unexpected initial state: %+v", st)
	}
}

func TestSetGetIsolatedPerUser(t *testing.T) {
	m := NewManager()
	m.Set(1, State{Step: StepPeriod, Period: "июль"})
	m.Set(2, State{Step: StepRegister})

	a := m.Get(1)
	b := m.Get(2)
	if a.Step != StepPeriod || a.Period != "июль" {
		t.Fatalf("unexpected state for user 1: %+v", a)
	}
	if b.Step != StepRegister || b.Period != "" {
		t.Fatalf("unexpected state for user 2: %+v", b)
	}
}

func TestResetClearsOnlyOneUser(t *testing.T) {
	m := NewManager()
	m.Set(1, State{Step: StepImportance, Period: "июль"})
	m.Set(2, State{Step: StepMainMenu})

	m.Reset(1)
	if st := m.Get(1); st.Step != StepIdle || st.Period != "" {
		t.Fatalf("reset did not clear user 1: %+v", st)
	}
	if st := m.Get(2); st.Step != StepMainMenu {
		t.Fatalf("reset affected user 2: %+v", st)
	}
}
