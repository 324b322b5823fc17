// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
)

// =============================================================================
// REQUEST CANCELLATION
// =============================================================================

// cancelManager holds the cancel function of the outstanding request. The
// request goroutine and the Update loop both reach it, so access is locked.
// Models keep it by pointer since Bubble Tea copies the Model on every
// update.
type cancelManager struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func newCancelManager() *cancelManager {
	return &cancelManager{}
}

// begin derives a cancellable context for a new request.
func (cm *cancelManager) begin(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancel != nil {
		cm.cancel()
	}
	cm.cancel = cancel
	return ctx
}

// abort cancels the outstanding request. It reports whether one was running.
func (cm *cancelManager) abort() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancel == nil {
		return false
	}
	cm.cancel()
	cm.cancel = nil
	return true
}

// done releases the context of a finished request.
func (cm *cancelManager) done() {
	cm.abort()
}
