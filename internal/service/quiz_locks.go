package service

import "sync"

// quizLocks serializes cohort recomputes per quiz. Refreshes on the same
// quiz are a write-write hazard over the same performance set; refreshes on
// different quizzes are independent and run in parallel.
type quizLocks struct {
	mu sync.Map // quizID -> *sync.Mutex
}

func newQuizLocks() *quizLocks {
	return &quizLocks{}
}

func (l *quizLocks) Lock(quizID string) func() {
	v, _ := l.mu.LoadOrStore(quizID, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
