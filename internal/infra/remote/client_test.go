package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"mscript-quiz-client/internal/domain"
	"mscript-quiz-client/internal/infra/remote"
)

func TestFetchQuestionSetMapsPayload(t *testing.T) {
	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/questions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if c, err := r.Cookie("session"); err == nil {
			gotCookie = c.Value
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"duration_minutes": 45,
			"questions": []map[string]any{
				{"id": 1, "question": "first?", "options": []string{"A", "B"}, "is_multiple": false},
				{"id": 2, "question": "second?", "options": []string{"C", "D"}, "is_multiple": true},
			},
		})
	}))
	defer server.Close()

	client := remote.NewClient(server.URL, "cookie-123", time.Second, nil)
	set, err := client.FetchQuestionSet(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotCookie != "cookie-123" {
		t.Fatalf("expected session cookie forwarded, got %q", gotCookie)
	}
	if set.Duration != 45*time.Minute {
		t.Fatalf("expected 45m duration, got %v", set.Duration)
	}
	if len(set.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(set.Questions))
	}
	if set.Questions[0].ID != "1" || set.Questions[0].Multiple {
		t.Fatalf("question 1 mapped wrong: %+v", set.Questions[0])
	}
	if set.Questions[1].ID != "2" || !set.Questions[1].Multiple {
		t.Fatalf("question 2 mapped wrong: %+v", set.Questions[1])
	}
}

func TestFetchQuestionSetDefaultsDurationWhenAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"questions": []map[string]any{
				{"id": 1, "question": "q", "options": []string{"A"}},
			},
		})
	}))
	defer server.Close()

	client := remote.NewClient(server.URL, "", time.Second, nil)
	set, err := client.FetchQuestionSet(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if set.Duration != 0 {
		t.Fatalf("absent duration must stay zero for the caller's default, got %v", set.Duration)
	}
}

func TestFetchQuestionSetUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := remote.NewClient(server.URL, "", time.Second, nil)
	if _, err := client.FetchQuestionSet(context.Background()); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestGradeSendsSubmissionShape(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/submit" || r.Method != http.MethodPost {
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"score":      1,
			"total":      2,
			"percentage": 50.0,
			"sections": map[string]any{
				"Basics": map[string]any{"correct": 1, "total": 2, "percentage": 50.0},
			},
			"results": []map[string]any{
				{"id": 1, "question": "q1", "options": []string{"A", "B"}, "is_correct": true,
					"correct_answers": []string{"B"}, "user_answers": []string{"B"}},
				{"id": 2, "question": "q2", "options": []string{"C", "D"}, "is_correct": false,
					"correct_answers": []string{"C"}, "user_answers": []string{}},
			},
		})
	}))
	defer server.Close()

	client := remote.NewClient(server.URL, "", time.Second, nil)
	graded, err := client.Grade(context.Background(), domain.Submission{
		Answers:   map[string][]string{"1": {"B"}},
		TimeTaken: "00:10",
	})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}

	if body["time_taken"] != "00:10" {
		t.Fatalf("expected time_taken 00:10, got %v", body["time_taken"])
	}
	answers, ok := body["answers"].(map[string]any)
	if !ok || !reflect.DeepEqual(answers["1"], []any{"B"}) {
		t.Fatalf("expected answers payload, got %v", body["answers"])
	}

	if graded.Score != 1 || graded.Total != 2 || graded.Percentage != 50 {
		t.Fatalf("summary mapped wrong: %+v", graded)
	}
	if graded.Sections["Basics"].Correct != 1 {
		t.Fatalf("sections mapped wrong: %+v", graded.Sections)
	}
	if len(graded.Results) != 2 || graded.Results[0].ID != "1" || !graded.Results[0].Correct {
		t.Fatalf("results mapped wrong: %+v", graded.Results)
	}
}

func TestGradeUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := remote.NewClient(server.URL, "", time.Second, nil)
	if _, err := client.Grade(context.Background(), domain.Submission{}); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestGradeTransportFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // no one listening

	client := remote.NewClient(server.URL, "", time.Second, nil)
	if _, err := client.Grade(context.Background(), domain.Submission{}); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := remote.NewClient(server.URL, "", time.Second, nil)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
