package types

import "testing"

func TestStartThread_PairKey(t *testing.T) {
	a := StartThread{OtherUserID: "bbb"}
	a.SetLoggedInUserID("aaa")

	b := StartThread{OtherUserID: "aaa"}
	b.SetLoggedInUserID("bbb")

	if a.PairKey() != b.PairKey() {
		t.Errorf("pair keys differ: %q != %q", a.PairKey(), b.PairKey())
	}
}

func TestParticipantStatus_CanSend(t *testing.T) {
	tt := []struct {
		status ParticipantStatus
		want   bool
	}{
		{ParticipantStatusAccepted, true},
		{ParticipantStatusPending, true},
		{"", false},
		{"REMOVED", false},
	}

	for _, tc := range tt {
		if got := tc.status.CanSend(); got != tc.want {
			t.Errorf("%q.CanSend() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestValidUsername(t *testing.T) {
	tt := []struct {
		in   string
		want bool
	}{
		{"john", true},
		{"john_doe-99", true},
		{"9lives", false},
		{"", false},
		{"has space", false},
		{"waytoolongusername123", false},
	}

	for _, tc := range tt {
		if got := ValidUsername(tc.in); got != tc.want {
			t.Errorf("ValidUsername(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestThread_Orphaned(t *testing.T) {
	tt := []struct {
		name   string
		thread Thread
		want   bool
	}{
		{name: "listing", thread: Thread{}, want: false},
		{name: "both", thread: Thread{Participants: []Participant{{}, {}}}, want: false},
		{name: "one_left", thread: Thread{Participants: []Participant{{}}}, want: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.thread.Orphaned(); got != tc.want {
				t.Errorf("Orphaned() = %v, want %v", got, tc.want)
			}
		})
	}
}
