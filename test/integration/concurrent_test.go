package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/lunchvote/api/internal/core/domain"
)

// castBallot is safe to call from multiple goroutines, unlike the
// require-based helpers.
func (app *TestApp) castBallot(voteID, menuID uuid.UUID, token string) (int, error) {
	raw, err := json.Marshal(map[string]any{"menuId": menuID})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/api/votes/%s/vote", app.Server.URL, voteID), bytes.NewReader(raw))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})

	resp, err := app.Client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func menuIDs(restaurant *domain.Restaurant) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(restaurant.Menus))
	for _, m := range restaurant.Menus {
		ids = append(ids, m.ID)
	}
	return ids
}

// TestConcurrentCasts fires 50 simultaneous ballots from distinct users at
// the same item and expects the tally to land at exactly 50.
func TestConcurrentCasts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, teacherToken := app.createUserAndToken(t, domain.RoleTeacher)
	restaurant := app.createRestaurant(t, teacherToken, "Bulgogi", "Bibimbap")
	menuID := restaurant.Menus[0].ID
	voteID := app.createVote(t, teacherToken, restaurant, menuIDs(restaurant))

	const voters = 50
	tokens := make([]string, voters)
	for i := range tokens {
		_, tokens[i] = app.createUserAndToken(t, domain.RoleStudent)
	}

	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for _, token := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			status, err := app.castBallot(voteID, menuID, token)
			if err != nil {
				errs <- err
				return
			}
			if status != http.StatusOK {
				errs <- fmt.Errorf("unexpected status %d", status)
			}
		}(token)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	current := app.currentVote(t, teacherToken)
	require.NotNil(t, current)
	assert.EqualValues(t, voters, tallyFor(t, current, menuID).Ballots)

	var ballots int
	require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM vote_records WHERE vote_id = $1", voteID).Scan(&ballots))
	assert.Equal(t, voters, ballots)
}

// TestConcurrentRevotes hammers a single user's ballot from many goroutines
// and expects exactly one row to survive.
func TestConcurrentRevotes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, teacherToken := app.createUserAndToken(t, domain.RoleTeacher)
	restaurant := app.createRestaurant(t, teacherToken, "Bulgogi", "Bibimbap")
	voteID := app.createVote(t, teacherToken, restaurant, menuIDs(restaurant))

	_, student := app.createUserAndToken(t, domain.RoleStudent)

	const attempts = 20
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		menuID := restaurant.Menus[i%2].ID
		wg.Add(1)
		go func(menuID uuid.UUID) {
			defer wg.Done()
			// Individual casts may lose the race on the unique constraint;
			// the row count below is what matters.
			_, _ = app.castBallot(voteID, menuID, student)
		}(menuID)
	}
	wg.Wait()

	var ballots int
	require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM vote_records WHERE vote_id = $1", voteID).Scan(&ballots))
	assert.Equal(t, 1, ballots)
}
