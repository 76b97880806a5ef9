package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lumiere-video/lumiere/internal/adapters/http/api"
	"github.com/lumiere-video/lumiere/internal/adapters/repository"
	"github.com/lumiere-video/lumiere/internal/domain/model"
	"github.com/lumiere-video/lumiere/internal/domain/reputation"
	"github.com/lumiere-video/lumiere/internal/domain/schedule"
	. "github.com/smartystreets/goconvey/convey"
)

// stubDeps is a controllable implementation of api.Dependencies.
type stubDeps struct {
	seen       map[string]bool
	enqueueOK  bool
	reviews    map[string]model.Review
	entries    map[string]api.Entry
	runs       map[string]model.PayoutRun
	registered map[string]float64
	views      map[string]int64
}

func newStubDeps() *stubDeps {
	return &stubDeps{
		seen:       map[string]bool{},
		enqueueOK:  true,
		reviews:    map[string]model.Review{},
		entries:    map[string]api.Entry{},
		runs:       map[string]model.PayoutRun{},
		registered: map[string]float64{},
		views:      map[string]int64{},
	}
}

func (s *stubDeps) SeenAndRecord(_ context.Context, id string) bool {
	if s.seen[id] {
		return true
	}
	s.seen[id] = true
	return false
}

func (s *stubDeps) Unrecord(_ context.Context, id string) { delete(s.seen, id) }

func (s *stubDeps) Size() int64 { return int64(len(s.seen)) }

func (s *stubDeps) Enqueue(_ context.Context, _ model.Submission) bool { return s.enqueueOK }

func (s *stubDeps) Review(_ context.Context, id string) (model.Review, error) {
	rev, ok := s.reviews[id]
	if !ok {
		return model.Review{}, fmt.Errorf("submission %s: %w", id, repository.ErrNotFound)
	}
	return rev, nil
}

func (s *stubDeps) UpsertReputation(_ context.Context, userID string, m reputation.Metrics) (api.Entry, error) {
	score := reputation.Score(m)
	e := api.Entry{Rank: 1, UserID: userID, Score: score, Badge: string(reputation.BadgeFor(score))}
	s.entries[userID] = e
	return e, nil
}

func (s *stubDeps) Reputation(_ context.Context, userID string) (api.Entry, error) {
	e, ok := s.entries[userID]
	if !ok {
		return api.Entry{}, fmt.Errorf("user %s: %w", userID, repository.ErrNotFound)
	}
	return e, nil
}

func (s *stubDeps) TopN(_ context.Context, n int) ([]api.Entry, error) {
	out := make([]api.Entry, 0, n)
	for _, e := range s.entries {
		out = append(out, e)
		if len(out) == n {
			break
		}
	}
	return out, nil
}

func (s *stubDeps) RegisterEntity(_ context.Context, entityID string, pct float64) error {
	if pct < 0 || pct > 100 {
		return repository.ErrInvalidShare
	}
	s.registered[entityID] = pct
	return nil
}

func (s *stubDeps) AddViews(_ context.Context, entityID string, views int64) error {
	if _, ok := s.registered[entityID]; !ok {
		return fmt.Errorf("entity %s: %w", entityID, repository.ErrUnknownEntity)
	}
	s.views[entityID] += views
	return nil
}

func (s *stubDeps) RunPayouts(_ context.Context, month string) (model.PayoutRun, error) {
	if _, ok := s.runs[month]; ok {
		return model.PayoutRun{}, fmt.Errorf("month %s: %w", month, repository.ErrMonthClosed)
	}
	run := model.PayoutRun{RunID: "run-1", Month: month, Pool: 1000, ClosedAt: time.Now()}
	s.runs[month] = run
	return run, nil
}

func (s *stubDeps) PayoutRun(_ context.Context, month string) (model.PayoutRun, error) {
	run, ok := s.runs[month]
	if !ok {
		return model.PayoutRun{}, fmt.Errorf("month %s: %w", month, repository.ErrNotFound)
	}
	return run, nil
}

func (s *stubDeps) GenerateSchedule(_ context.Context, req schedule.Request) []model.ScheduleSlot {
	out := make([]model.ScheduleSlot, req.Count)
	for i := range out {
		out[i] = model.ScheduleSlot{At: req.StartDate.AddDate(0, 0, i), Hour: 12}
	}
	return out
}

func (s *stubDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"queue_size": 0}
}

func newTestServer(deps *stubDeps) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, deps, 50).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestSubmissionsEndpoint(t *testing.T) {
	Convey("Given the submissions endpoint", t, func() {
		deps := newStubDeps()
		srv := newTestServer(deps)
		defer srv.Close()

		body := `{"submission_id":"s1","task_id":"t1","user_id":"u1","notes":"solid work","file_url":"a.mp4"}`

		Convey("When a new submission is posted", func() {
			resp := postJSON(t, srv.URL+"/submissions", body)

			Convey("Then it is accepted for async review", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
				var ack struct {
					Status    string `json:"status"`
					Duplicate bool   `json:"duplicate"`
				}
				decode(t, resp, &ack)
				So(ack.Status, ShouldEqual, "accepted")
				So(ack.Duplicate, ShouldBeFalse)
			})

			Convey("And a repeat of the same submission is flagged as duplicate", func() {
				resp.Body.Close()
				dup := postJSON(t, srv.URL+"/submissions", body)
				So(dup.StatusCode, ShouldEqual, http.StatusOK)
				var ack struct {
					Duplicate bool `json:"duplicate"`
				}
				decode(t, dup, &ack)
				So(ack.Duplicate, ShouldBeTrue)
			})
		})

		Convey("When required fields are missing", func() {
			resp := postJSON(t, srv.URL+"/submissions", `{"submission_id":"s1"}`)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the queue pushes back", func() {
			deps.enqueueOK = false
			resp := postJSON(t, srv.URL+"/submissions", body)
			defer resp.Body.Close()

			Convey("Then the client gets 429 and may retry the same id", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)
				So(deps.seen["s1"], ShouldBeFalse)
			})
		})
	})
}

func TestReviewsEndpoint(t *testing.T) {
	Convey("Given the reviews endpoint", t, func() {
		deps := newStubDeps()
		deps.reviews["s1"] = model.Review{
			SubmissionID: "s1",
			UserID:       "u1",
			Score:        82,
			Feedback:     "great pacing",
			Verdict:      model.VerdictApproved,
			ReviewedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		}
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When fetching an existing review", func() {
			resp, err := http.Get(srv.URL + "/reviews/s1")
			So(err, ShouldBeNil)

			Convey("Then the review is returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var rev struct {
					Score   int    `json:"score"`
					Verdict string `json:"verdict"`
				}
				decode(t, resp, &rev)
				So(rev.Score, ShouldEqual, 82)
				So(rev.Verdict, ShouldEqual, "APPROVED")
			})
		})

		Convey("When the review does not exist yet", func() {
			resp, err := http.Get(srv.URL + "/reviews/pending")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then 404 signals the client to keep polling", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestReputationEndpoints(t *testing.T) {
	Convey("Given the reputation endpoints", t, func() {
		deps := newStubDeps()
		srv := newTestServer(deps)
		defer srv.Close()

		metricsBody := `{"deadline_rate":90,"acceptance_rate":90,"quality_score":90,"collab_rate":90,"engagement_rate":90,"account_age_days":400,"tasks_completed":60}`

		Convey("When updating a user's metrics", func() {
			req, _ := http.NewRequest(http.MethodPut, srv.URL+"/reputation/u1", strings.NewReader(metricsBody))
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)

			Convey("Then the recomputed entry is returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var entry struct {
					UserID string  `json:"user_id"`
					Score  float64 `json:"score"`
					Badge  string  `json:"badge"`
				}
				decode(t, resp, &entry)
				So(entry.UserID, ShouldEqual, "u1")
				So(entry.Score, ShouldEqual, 91.5)
				So(entry.Badge, ShouldEqual, "platinum")
			})

			Convey("And GET returns the same entry", func() {
				resp.Body.Close()
				got, err := http.Get(srv.URL + "/reputation/u1")
				So(err, ShouldBeNil)
				So(got.StatusCode, ShouldEqual, http.StatusOK)
				got.Body.Close()
			})
		})

		Convey("When a rate is out of range", func() {
			req, _ := http.NewRequest(http.MethodPut, srv.URL+"/reputation/u1",
				strings.NewReader(`{"deadline_rate":101}`))
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When fetching an unknown user", func() {
			resp, err := http.Get(srv.URL + "/reputation/ghost")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the leaderboard limit is out of bounds", func() {
			resp, err := http.Get(srv.URL + "/leaderboard?limit=500")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When requesting the leaderboard", func() {
			deps.entries["u1"] = api.Entry{Rank: 1, UserID: "u1", Score: 90, Badge: "platinum"}
			resp, err := http.Get(srv.URL + "/leaderboard?limit=10")
			So(err, ShouldBeNil)

			var entries []api.Entry
			decode(t, resp, &entries)
			So(len(entries), ShouldEqual, 1)
			So(entries[0].UserID, ShouldEqual, "u1")
		})
	})
}

func TestCatalogAndPayoutEndpoints(t *testing.T) {
	Convey("Given the catalog and payout endpoints", t, func() {
		deps := newStubDeps()
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When registering an entity and adding views", func() {
			resp := postJSON(t, srv.URL+"/catalog", `{"entity_id":"film-1","revenue_share_pct":70}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			resp.Body.Close()

			resp = postJSON(t, srv.URL+"/catalog/film-1/views", `{"views":5000}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			resp.Body.Close()

			So(deps.views["film-1"], ShouldEqual, 5000)
		})

		Convey("When adding views to an unknown entity", func() {
			resp := postJSON(t, srv.URL+"/catalog/ghost/views", `{"views":10}`)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("When closing a month", func() {
			resp := postJSON(t, srv.URL+"/payouts/run", `{"month":"2026-08"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var run struct {
				RunID string `json:"run_id"`
				Month string `json:"month"`
			}
			decode(t, resp, &run)
			So(run.Month, ShouldEqual, "2026-08")
			So(run.RunID, ShouldNotBeEmpty)

			Convey("Then closing it again conflicts", func() {
				again := postJSON(t, srv.URL+"/payouts/run", `{"month":"2026-08"}`)
				defer again.Body.Close()
				So(again.StatusCode, ShouldEqual, http.StatusConflict)
			})

			Convey("And the run is readable afterwards", func() {
				got, err := http.Get(srv.URL + "/payouts/2026-08")
				So(err, ShouldBeNil)
				defer got.Body.Close()
				So(got.StatusCode, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the month identifier is malformed", func() {
			resp := postJSON(t, srv.URL+"/payouts/run", `{"month":"August"}`)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching a month that was never closed", func() {
			resp, err := http.Get(srv.URL + "/payouts/1999-01")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSchedulesEndpoint(t *testing.T) {
	Convey("Given the schedules endpoint", t, func() {
		deps := newStubDeps()
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When generating a schedule", func() {
			body := `{"platform":"TIKTOK","frequency":"daily","start_date":"2026-08-01T00:00:00Z","count":3}`
			resp := postJSON(t, srv.URL+"/schedules", body)

			Convey("Then the requested number of slots is returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var slots []struct {
					At   string `json:"at"`
					Hour int    `json:"hour"`
				}
				decode(t, resp, &slots)
				So(len(slots), ShouldEqual, 3)
			})
		})

		Convey("When the count is out of range", func() {
			resp := postJSON(t, srv.URL+"/schedules", `{"platform":"TIKTOK","count":500}`)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the platform is missing", func() {
			resp := postJSON(t, srv.URL+"/schedules", `{"count":3}`)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When last_post_hour is invalid", func() {
			resp := postJSON(t, srv.URL+"/schedules", `{"platform":"TIKTOK","count":3,"last_post_hour":25}`)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given the operational endpoints", t, func() {
		deps := newStubDeps()
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When hitting /healthz", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("When hitting /stats", func() {
			resp, err := http.Get(srv.URL + "/stats")
			So(err, ShouldBeNil)

			var stats map[string]interface{}
			decode(t, resp, &stats)
			So(stats, ShouldContainKey, "queue_size")
		})
	})
}
