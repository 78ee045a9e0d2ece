/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"

	"github.com/richie6280/docstore/checkpoint"
	"github.com/richie6280/docstore/datastore"
	"github.com/richie6280/docstore/errors"
	"github.com/richie6280/docstore/storagemodels"
)

// Subscription is a running change-feed consumer. Batches arrive on Changes in
// feed order; the channel closes when the subscription stops.
type Subscription struct {
	lease   string
	changes <-chan storagemodels.ChangeBatch
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// Changes returns the batch channel.
func (s *Subscription) Changes() <-chan storagemodels.ChangeBatch { return s.changes }

// Lease returns the checkpoint name the subscription persists under.
func (s *Subscription) Lease() string { return s.lease }

// Done is closed once the worker has exited.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close stops the worker and waits for it to exit.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
	<-s.done
}

// ChangeFeedSubscribe starts consuming the container's change feed from the last
// checkpoint saved under the lease (database/container unless WithLease is given).
// Each delivered batch's continuation is persisted after the batch is handed to
// the channel, so a restarted subscription may see the last batch again.
func (f *Facade) ChangeFeedSubscribe(ctx context.Context, databaseID, containerID string, opts ...storagemodels.ChangeFeedOption) (*Subscription, error) {
	options := storagemodels.DefaultChangeFeedOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Lease == "" {
		options.Lease = databaseID + "/" + containerID
	}
	if options.PageSize <= 0 {
		options.PageSize = storagemodels.DefaultChangeFeedOptions().PageSize
	}

	ct, ok, err := f.ResolveContainer(ctx, databaseID, containerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewNotFoundError("container", databaseID+"/"+containerID)
	}

	cp, found, err := f.checkpoints.Load(ctx, options.Lease)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint %q: %w", options.Lease, err)
	}
	token := ""
	if found {
		token = cp.Continuation
	}

	f.logger.WithFields(containerFields(ct)).WithFields(logrus.Fields{
		"lease":   options.Lease,
		"resumed": found,
	}).Info("change feed subscription started")

	workerCtx, cancel := context.WithCancel(ctx)
	out := make(chan storagemodels.ChangeBatch, options.BufferSize)
	sub := &Subscription{
		lease:   options.Lease,
		changes: out,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go f.changeFeedWorker(workerCtx, ct, token, options, out, sub.done)

	return sub, nil
}

// changeFeedWorker handles the actual polling loop
func (f *Facade) changeFeedWorker(
	ctx context.Context,
	ct datastore.Container,
	token string,
	options storagemodels.ChangeFeedOptions,
	out chan<- storagemodels.ChangeBatch,
	done chan<- struct{},
) {
	defer close(done)
	defer close(out)

	log := f.logger.WithFields(containerFields(ct)).WithField("lease", options.Lease)

	var itemsSeen int64
	var batches int
	var errs []error
	startTime := time.Now()

	reportProgress := func() {
		if options.ProgressHandler == nil {
			return
		}
		progress := storagemodels.ChangeProgress{
			ItemsProcessed: itemsSeen,
			BatchesRead:    batches,
			Continuation:   token,
			Errors:         errs,
			StartTime:      startTime,
		}
		if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
			progress.CurrentRate = float64(itemsSeen) / elapsed
		}
		options.ProgressHandler(progress)
	}

	persist := func(continuation string) {
		// Saved even when ctx is cancelled so a delivered batch is not replayed.
		if err := f.checkpoints.Save(context.WithoutCancel(ctx), checkpoint.New(options.Lease, continuation)); err != nil {
			log.WithError(err).Warn("failed to persist change feed checkpoint")
			errs = append(errs, err)
		}
	}

	for {
		if ctx.Err() != nil {
			return
		}

		page, err := readChangesWithRetry(ctx, ct, token, options)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if options.ErrorHandler != nil && options.ErrorHandler(err) {
				log.WithError(err).Warn("change feed read failed, continuing")
				errs = append(errs, err)
				if !sleepCtx(ctx, options.PollInterval) {
					return
				}
				continue
			}

			log.WithError(err).Error("change feed stopped")
			select {
			case <-ctx.Done():
			case out <- storagemodels.ChangeBatch{
				Continuation: token,
				Error:        fmt.Errorf("change feed read failed: %w", err),
				Meta: storagemodels.ChangeMeta{
					BatchNumber: batches,
					ItemsSeen:   itemsSeen,
					Timestamp:   time.Now(),
				},
			}:
			}
			return
		}

		if len(page.Items) == 0 {
			if page.Continuation != "" && page.Continuation != token {
				token = page.Continuation
				persist(token)
			}
			if !sleepCtx(ctx, options.PollInterval) {
				return
			}
			continue
		}

		batches++
		itemsSeen += int64(len(page.Items))
		batch := storagemodels.ChangeBatch{
			Items:        page.Items,
			Continuation: page.Continuation,
			Meta: storagemodels.ChangeMeta{
				BatchNumber: batches,
				ItemsSeen:   itemsSeen,
				Timestamp:   time.Now(),
			},
		}

		select {
		case <-ctx.Done():
			return
		case out <- batch:
		}

		token = page.Continuation
		persist(token)
		log.WithField("items", len(page.Items)).Debug("change feed batch delivered")
		reportProgress()
	}
}

// readChangesWithRetry retries remote failures with exponential backoff.
// Validation, not-found and unsupported errors fail immediately.
func readChangesWithRetry(
	ctx context.Context,
	ct datastore.Container,
	token string,
	options storagemodels.ChangeFeedOptions,
) (storagemodels.ChangePage, error) {
	eb := backoff.NewExponentialBackOff()
	if options.RetryBackoff > 0 {
		eb.InitialInterval = options.RetryBackoff
	}
	eb.MaxElapsedTime = 0

	retries := options.MaxRetries
	if retries < 0 {
		retries = 0
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)

	var page storagemodels.ChangePage
	err := backoff.Retry(func() error {
		p, err := ct.ReadChanges(ctx, token, options.PageSize)
		if err != nil {
			if !errors.IsRemote(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		page = p
		return nil
	}, bo)
	return page, err
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
