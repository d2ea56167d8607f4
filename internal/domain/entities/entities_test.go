package entities

import "testing"

func TestLevelIsValid(t *testing.T) {
	tests := []struct {
		level Level
		want  bool
	}{
		{LevelHigh, true},
		{LevelMedium, true},
		{LevelLow, true},
		{Level(""), false},
		{Level("critical"), false},
	}

	for _, tt := range tests {
		if got := tt.level.IsValid(); got != tt.want {
			t.Errorf("Level(%q).IsValid() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestLevelRank(t *testing.T) {
	if LevelLow.Rank() >= LevelMedium.Rank() {
		t.Error("expected low to rank below medium")
	}
	if LevelMedium.Rank() >= LevelHigh.Rank() {
		t.Error("expected medium to rank below high")
	}
}

func TestTodoNormalize(t *testing.T) {
	todo := Todo{Text: "  Buy milk  "}
	todo.Normalize()

	if todo.Text != "Buy milk" {
		t.Errorf("expected trimmed text, got %q", todo.Text)
	}
	if todo.Priority != LevelMedium {
		t.Errorf("expected default priority medium, got %q", todo.Priority)
	}
	if todo.Urgency != LevelMedium {
		t.Errorf("expected default urgency medium, got %q", todo.Urgency)
	}
}

func TestTodoValidate(t *testing.T) {
	negative := -5
	positive := 30

	tests := []struct {
		name    string
		todo    Todo
		wantErr error
	}{
		{
			name:    "valid",
			todo:    Todo{Text: "Buy milk", Priority: LevelMedium, Urgency: LevelMedium},
			wantErr: nil,
		},
		{
			name:    "empty text",
			todo:    Todo{Text: "", Priority: LevelMedium, Urgency: LevelMedium},
			wantErr: ErrEmptyText,
		},
		{
			name:    "whitespace only text",
			todo:    Todo{Text: "   ", Priority: LevelMedium, Urgency: LevelMedium},
			wantErr: ErrEmptyText,
		},
		{
			name:    "invalid priority",
			todo:    Todo{Text: "x", Priority: Level("urgent"), Urgency: LevelMedium},
			wantErr: ErrInvalidLevel,
		},
		{
			name:    "negative estimate",
			todo:    Todo{Text: "x", Priority: LevelLow, Urgency: LevelLow, EstimatedTime: &negative},
			wantErr: ErrNegativeTime,
		},
		{
			name:    "positive estimate",
			todo:    Todo{Text: "x", Priority: LevelLow, Urgency: LevelLow, EstimatedTime: &positive},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.todo.Normalize()
			if err := tt.todo.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTodoOwnedBy(t *testing.T) {
	todo := Todo{UserID: "user_1"}

	if !todo.OwnedBy("user_1") {
		t.Error("expected todo to be owned by user_1")
	}
	if todo.OwnedBy("user_2") {
		t.Error("expected todo not to be owned by user_2")
	}
}

func TestUserFullName(t *testing.T) {
	first := "Ada"
	last := "Lovelace"

	tests := []struct {
		name string
		user User
		want string
	}{
		{"both names", User{FirstName: &first, LastName: &last}, "Ada Lovelace"},
		{"first only", User{FirstName: &first}, "Ada"},
		{"none", User{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.FullName(); got != tt.want {
				t.Errorf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}
