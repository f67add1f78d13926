package entity

import "testing"

func TestFields_Validate(t *testing.T) {
	tests := []struct {
		name    string
		fields  Fields
		wantErr error
	}{
		{"complete", Fields{Type: "pun", Setup: "s", Punchline: "p"}, nil},
		{"missing type", Fields{Setup: "s", Punchline: "p"}, errTypeRequired},
		{"missing setup", Fields{Type: "pun", Punchline: "p"}, errSetupRequired},
		{"missing punchline", Fields{Type: "pun", Setup: "s"}, errPunchlineRequired},
		{"empty", Fields{}, errTypeRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fields.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFields_Joke(t *testing.T) {
	f := Fields{Type: "dad", Setup: "Why?", Punchline: "Because."}
	j := f.Joke(7)
	want := Joke{ID: 7, Type: "dad", Setup: "Why?", Punchline: "Because."}
	if j != want {
		t.Errorf("Joke() = %+v, want %+v", j, want)
	}
	if got := j.Fields(); got != f {
		t.Errorf("Fields() = %+v, want %+v", got, f)
	}
}
