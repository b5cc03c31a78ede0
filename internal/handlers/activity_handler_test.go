package handlers

import (
	"testing"
	"time"
)

func TestSetNextActionRequestValidate(t *testing.T) {
	due := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		req     SetNextActionRequest
		wantErr bool
	}{
		{"removal", SetNextActionRequest{}, false},
		{"valid", SetNextActionRequest{Type: "call-prospect", Date: &due}, false},
		{"missing date", SetNextActionRequest{Type: "call-prospect"}, true},
		{"unknown type", SetNextActionRequest{Type: "write-poem", Date: &due}, true},
		{"custom task without details", SetNextActionRequest{Type: "custom-task", Date: &due}, true},
		{"custom task with details", SetNextActionRequest{Type: "custom-task", Details: "drop off brochures", Date: &due}, false},
	}

	for _, tc := range cases {
		msg := tc.req.validate()
		if tc.wantErr && msg == "" {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !tc.wantErr && msg != "" {
			t.Fatalf("%s: unexpected validation error %q", tc.name, msg)
		}
	}
}

func TestCreateActivityRequestValidate(t *testing.T) {
	due := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	prospectID := "2f0c60b2-8f2b-4a9c-9d58-b1f4c2f3a6d7"

	cases := []struct {
		name    string
		req     CreateActivityRequest
		wantErr bool
	}{
		{"valid minimal", CreateActivityRequest{ActivityType: "meeting", Subject: "intro call"}, false},
		{"valid with prospect and next action", CreateActivityRequest{
			ActivityType: "meeting",
			Subject:      "intro call",
			ProspectID:   prospectID,
			NextAction:   &SetNextActionRequest{Type: "send-samples", Date: &due},
		}, false},
		{"missing activity type", CreateActivityRequest{Subject: "intro call"}, true},
		{"missing subject", CreateActivityRequest{ActivityType: "meeting"}, true},
		{"malformed prospect id", CreateActivityRequest{ActivityType: "meeting", Subject: "intro call", ProspectID: "pros-1"}, true},
		{"empty next action object", CreateActivityRequest{ActivityType: "meeting", Subject: "intro call", NextAction: &SetNextActionRequest{}}, true},
		{"invalid nested next action", CreateActivityRequest{
			ActivityType: "meeting",
			Subject:      "intro call",
			NextAction:   &SetNextActionRequest{Type: "call-prospect"},
		}, true},
	}

	for _, tc := range cases {
		msg := tc.req.validate()
		if tc.wantErr && msg == "" {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !tc.wantErr && msg != "" {
			t.Fatalf("%s: unexpected validation error %q", tc.name, msg)
		}
	}
}
