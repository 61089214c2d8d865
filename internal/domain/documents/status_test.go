package documents

import "testing"

func TestCanValidate(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusDraft, true},
		{StatusPending, false},
		{StatusCompleted, false},
		{StatusCancelled, false},
	}
	for _, tt := range tests {
		if got := CanValidate(tt.status); got != tt.want {
			t.Errorf("CanValidate(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestCanCancel(t *testing.T) {
	tests := []struct {
		kind   Kind
		status Status
		want   bool
	}{
		{KindEntry, StatusDraft, true},
		{KindEntry, StatusPending, false},
		{KindEntry, StatusCompleted, true},
		{KindEntry, StatusCancelled, false},
		{KindExit, StatusDraft, true},
		{KindExit, StatusPending, true},
		{KindExit, StatusCompleted, true},
		{KindExit, StatusCancelled, false},
	}
	for _, tt := range tests {
		if got := CanCancel(tt.kind, tt.status); got != tt.want {
			t.Errorf("CanCancel(%s, %s) = %v, want %v", tt.kind, tt.status, got, tt.want)
		}
	}
}

func TestCanModify(t *testing.T) {
	if !CanModify(StatusDraft) {
		t.Error("drafts must be modifiable")
	}
	for _, s := range []Status{StatusPending, StatusCompleted, StatusCancelled} {
		if CanModify(s) {
			t.Errorf("CanModify(%s) = true, want false", s)
		}
	}
}

func TestIsCommitted(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusDraft, false},
		{StatusPending, true},
		{StatusCompleted, true},
		{StatusCancelled, false},
	}
	for _, tt := range tests {
		if got := tt.status.IsCommitted(); got != tt.want {
			t.Errorf("%s.IsCommitted() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusPending, StatusCompleted, StatusCancelled} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("archived").Valid() {
		t.Error("unknown status should not be valid")
	}
}
