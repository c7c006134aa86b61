package bot

import (
	"fmt"
	"math/rand"
	"time"
)

// Agent is an autonomous seat-filler. A Cee-Lo turn has exactly one legal
// action, so the agent only decides dice values and pacing.
type Agent struct {
	ID   string
	Name string
	rng  *rand.Rand
}

// NewAgent creates an agent for a bot user id.
func NewAgent(userID string) (*Agent, error) {
	if !IsBot(userID) {
		return nil, fmt.Errorf("not a bot user id: %s", userID)
	}
	return &Agent{
		ID:   userID,
		Name: GetBotDisplayName(userID),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Roll produces the agent's three dice.
func (a *Agent) Roll() []int {
	return []int{a.rng.Intn(6) + 1, a.rng.Intn(6) + 1, a.rng.Intn(6) + 1}
}

// ActDelay picks a wait in [min,max] seconds so bots do not act instantly.
func (a *Agent) ActDelay(minSec, maxSec int) int {
	if maxSec <= minSec {
		return minSec
	}
	return a.rng.Intn(maxSec-minSec+1) + minSec
}
