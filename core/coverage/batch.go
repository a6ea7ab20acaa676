package coverage

import (
	"fmt"
	"time"

	"github.com/bnb-chain/evmcov/common/gopool"
	"github.com/bnb-chain/evmcov/core/vm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/hashicorp/go-multierror"
)

// Job is one coverage computation of a batch. Code and Trace are called from
// a worker goroutine.
type Job struct {
	Name  string
	Code  func() ([]byte, error)
	Trace func() ([]int64, error)
}

// JobResult is the outcome of a Job. Exactly one of Result and Err is set.
type JobResult struct {
	Name     string
	CodeHash common.Hash
	Result   *Result
	Report   *Report // only when the runner was asked for reports
	Err      error
}

// Runner computes the coverage of independent jobs in parallel. Identical
// bytecode shared by several jobs is scanned once.
type Runner struct {
	Set     *vm.InstructionSet // nil selects the legacy set
	Cache   *ScanCache         // nil creates a fresh cache per Run
	Threads int                // zero picks a size from the job count
	Reports bool
}

// Run executes jobs and returns their results in job order. The returned
// error aggregates the failures of all jobs, every job runs regardless.
func (r *Runner) Run(jobs []Job) ([]JobResult, error) {
	var (
		cache   = r.Cache
		threads = r.Threads
		set     = r.Set
		results = make([]JobResult, len(jobs))
	)
	if cache == nil {
		cache = NewScanCache(len(jobs))
	}
	if threads <= 0 {
		threads = gopool.Threads(len(jobs))
	}
	if set == nil {
		set = &vm.LegacyInstructionSet
	}
	pool, err := gopool.New(threads)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	start := time.Now()
	for i := range jobs {
		i := i
		if err := pool.Submit(func() { results[i] = r.runJob(jobs[i], set, cache) }); err != nil {
			results[i] = JobResult{Name: jobs[i].Name, Err: err}
		}
	}
	pool.Wait()

	var (
		errs   *multierror.Error
		failed int
	)
	for _, res := range results {
		if res.Err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", res.Name, res.Err))
			failed++
		}
	}
	log.Debug("Batch coverage finished", "jobs", len(jobs), "threads", threads, "failed", failed,
		"scanned", cache.Len(), "elapsed", common.PrettyDuration(time.Since(start)))
	return results, errs.ErrorOrNil()
}

func (r *Runner) runJob(job Job, set *vm.InstructionSet, cache *ScanCache) JobResult {
	res := JobResult{Name: job.Name}
	code, err := job.Code()
	if err != nil {
		res.Err = err
		return res
	}
	trace, err := job.Trace()
	if err != nil {
		res.Err = err
		return res
	}
	instrs, hash := cache.Scan(code, set)
	res.CodeHash = hash
	if res.Result, res.Err = Compute(instrs, trace); res.Err != nil {
		return res
	}
	if r.Reports {
		res.Report = NewReport(code, set, res.Result)
	}
	log.Trace("Computed coverage", "job", job.Name, "hash", hash, "hits", res.Result.Hits, "total", res.Result.Total)
	return res
}
