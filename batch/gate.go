// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package batch

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate spaces outgoing extraction calls so that at most one starts per
// delay interval system-wide, no matter how many pipelines run
// concurrently. Concurrency bounds parallel preparation work; the gate
// bounds call cadence.
type Gate struct {
	limiter *rate.Limiter
}

// NewGate creates a gate enforcing a minimum interval between calls.
// A zero or negative delay disables the gate entirely.
func NewGate(delay time.Duration) *Gate {
	g := &Gate{}
	if delay > 0 {
		g.limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return g
}

// Wait blocks until the next call slot is available, or until ctx is
// done. A disabled gate returns immediately.
func (g *Gate) Wait(ctx context.Context) error {
	if g == nil || g.limiter == nil {
		return nil
	}
	return g.limiter.Wait(ctx)
}
