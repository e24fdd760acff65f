// Copyright 2020 Qiniu Cloud (qiniu.com)
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

package reminder

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/qiniu/x/xlog"
)

type job struct {
	fn         func()
	enqueuedAt time.Time
}

// Pool 固定数量的发送协程，队列满时丢弃任务。
type Pool struct {
	jobs    chan job
	workers int
	wg      sync.WaitGroup
	once    sync.Once
	xl      *xlog.Logger

	enqueued  int64
	processed int64
	dropped   int64
}

func NewPool(workers, queue int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 16
	}
	p := &Pool{
		jobs:    make(chan job, queue),
		workers: workers,
		xl:      xlog.New("reminder pool"),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for j := range p.jobs {
		if wait := time.Since(j.enqueuedAt); wait > time.Minute {
			p.xl.Warnf("worker %d: job waited %v in queue", id, wait)
		}
		p.run(j)
		atomic.AddInt64(&p.processed, 1)
	}
}

func (p *Pool) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			p.xl.Errorf("reminder job panic: %v", r)
		}
	}()
	j.fn()
}

// Submit 提交任务，队列已满或已关闭时返回 false。
func (p *Pool) Submit(fn func()) (ok bool) {
	defer func() {
		// 已关闭的队列
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case p.jobs <- job{fn: fn, enqueuedAt: time.Now()}:
		atomic.AddInt64(&p.enqueued, 1)
		return true
	default:
		atomic.AddInt64(&p.dropped, 1)
		return false
	}
}

// Stop 关闭队列并等待已提交的任务完成。
func (p *Pool) Stop() {
	p.once.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}

// Stats 已入队、已处理与丢弃的任务数量。
func (p *Pool) Stats() (enqueued, processed, dropped int64) {
	return atomic.LoadInt64(&p.enqueued), atomic.LoadInt64(&p.processed), atomic.LoadInt64(&p.dropped)
}
