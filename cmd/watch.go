package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fyerfyer/doc-QG-system/internal/logger"
	"github.com/fyerfyer/doc-QG-system/internal/models"
)

// errStopped 收到退出信号
var errStopped = errors.New("watch stopped by signal")

// questionGenerator 监听模式使用的生成接口
type questionGenerator interface {
	Generate(ctx context.Context, req models.GenerationRequest, path string) ([]string, error)
	Allowed(path string) bool
}

// watcher 监听目录，为新放入的文档生成问题
type watcher struct {
	svc          questionGenerator
	req          models.GenerationRequest
	outDir       string
	stableWindow time.Duration // 文件大小保持不变的等待时间
	logger       *logrus.Logger

	mu      sync.Mutex
	pending map[string]struct{} // 已排队未处理的文件
}

func newWatcher(svc questionGenerator, req models.GenerationRequest, outDir string, log *logrus.Logger) *watcher {
	return &watcher{
		svc:          svc,
		req:          req,
		outDir:       outDir,
		stableWindow: 500 * time.Millisecond,
		logger:       log,
		pending:      make(map[string]struct{}),
	}
}

// Run 监听目录直到收到信号或上下文取消
func (w *watcher) Run(ctx context.Context, dir string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %v", err)
	}
	defer fsw.Close()

	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %v", dir, err)
	}
	w.logger.WithField(logger.FieldPath, dir).Info("Watching directory for documents")

	g, ctx := errgroup.WithContext(ctx)
	queue := make(chan string, 64)

	// 事件循环
	g.Go(func() error {
		defer close(queue)
		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-fsw.Events:
				if !ok {
					return nil
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				if !w.svc.Allowed(event.Name) || !w.enqueue(event.Name) {
					continue
				}
				select {
				case queue <- event.Name:
				case <-ctx.Done():
					return nil
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return nil
				}
				w.logger.WithError(err).Warn("File watcher error")
			}
		}
	})

	// 顺序处理文档
	g.Go(func() error {
		for path := range queue {
			w.process(ctx, path)
		}
		return nil
	})

	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sig)
		select {
		case <-sig:
			w.logger.Info("Shutting down watcher...")
			return errStopped
		case <-ctx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errStopped) {
		return err
	}
	return nil
}

// enqueue 记录待处理文件，已在队列中时返回false
func (w *watcher) enqueue(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.pending[path]; ok {
		return false
	}
	w.pending[path] = struct{}{}
	return true
}

func (w *watcher) done(path string) {
	w.mu.Lock()
	delete(w.pending, path)
	w.mu.Unlock()
}

// process 等待文件写完后生成问题并写出结果
func (w *watcher) process(ctx context.Context, path string) {
	defer w.done(path)
	entry := w.logger.WithField(logger.FieldPath, path)

	if err := waitStable(ctx, path, w.stableWindow); err != nil {
		entry.WithError(err).Warn("File not ready, skipping")
		return
	}

	questions, err := w.svc.Generate(ctx, w.req, path)
	if err != nil {
		entry.WithError(err).Warn("Question generation failed")
		return
	}
	if len(questions) == 0 {
		entry.Warn(models.MsgNoQuestions)
		return
	}

	out, err := saveResult(w.outDir, path, result{
		Language:  w.req.Language,
		Prompt:    w.req.Prompt,
		Questions: questions,
	})
	if err != nil {
		entry.WithError(err).Error("Failed to save questions")
		return
	}
	entry.WithFields(logrus.Fields{
		"output":    out,
		"questions": len(questions),
	}).Info("Questions generated")
}

// waitStable 等待文件大小在一个间隔内不再变化
func waitStable(ctx context.Context, path string, interval time.Duration) error {
	var last int64 = -1
	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == last {
			return nil
		}
		last = info.Size()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
