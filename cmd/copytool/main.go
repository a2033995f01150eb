// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Command copytool copies every document of a source collection into a
// destination collection across possibly distinct MongoDB-compatible
// clusters, applying one conflict strategy to the whole run and
// printing running progress as it goes.
// go run cmd/copytool/main.go -src mongodb://localhost:27017 -dst mongodb://localhost:27018 -srcdb app -srccol users -dstdb app -dstcol users -strategy skip
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/go-core-stack/doccopy/document"
	"github.com/go-core-stack/doccopy/keepalive"
	"github.com/go-core-stack/doccopy/mongodriver"
	"github.com/go-core-stack/doccopy/writer"
)

func parseStrategy(s string) (document.ConflictStrategy, bool) {
	switch strings.ToLower(s) {
	case "abort":
		return document.Abort, true
	case "skip":
		return document.Skip, true
	case "overwrite":
		return document.Overwrite, true
	case "generatenewids", "generate-new-ids":
		return document.GenerateNewIds, true
	default:
		return document.Abort, false
	}
}

func main() {
	var (
		srcURI      = flag.String("src", "", "source MongoDB URI (required)")
		dstURI      = flag.String("dst", "", "destination MongoDB URI (required)")
		srcDB       = flag.String("srcdb", "", "source database name (required)")
		srcCol      = flag.String("srccol", "", "source collection name (required)")
		dstDB       = flag.String("dstdb", "", "destination database name (required)")
		dstCol      = flag.String("dstcol", "", "destination collection name (required)")
		strategy    = flag.String("strategy", "abort", "conflict strategy: abort, skip, overwrite, generatenewids")
		pageSize    = flag.Int("pagesize", 2000, "find() batch size while reading the source")
		keepAliveMs = flag.Int64("keepalive-interval-ms", 0, "keep-alive read interval in ms, 0 disables the keep-alive wrapper")
		timeoutMs   = flag.Int64("keepalive-timeout-ms", 60000, "keep-alive timeout in ms, counted from the start of the source stream")
		timeout     = flag.Duration("timeout", 0, "overall run timeout, 0 means no deadline")
	)
	flag.Parse()

	if *srcURI == "" || *dstURI == "" || *srcDB == "" || *srcCol == "" || *dstDB == "" || *dstCol == "" {
		log.Println("copytool: -src, -dst, -srcdb, -srccol, -dstdb and -dstcol are required")
		os.Exit(1)
	}
	strat, ok := parseStrategy(*strategy)
	if !ok {
		log.Printf("copytool: unrecognized -strategy %q", *strategy)
		os.Exit(1)
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	src, err := mongo.Connect(options.Client().ApplyURI(*srcURI).SetRetryReads(true))
	if err != nil {
		log.Printf("copytool: connecting to source: %v", err)
		os.Exit(1)
	}
	defer src.Disconnect(ctx)

	dst, err := mongo.Connect(options.Client().ApplyURI(*dstURI).SetRetryWrites(true))
	if err != nil {
		log.Printf("copytool: connecting to destination: %v", err)
		os.Exit(1)
	}
	defer dst.Disconnect(ctx)

	srcCollection := src.Database(*srcDB).Collection(*srcCol)
	dstCollection := dst.Database(*dstDB).Collection(*dstCol)

	cursorStream, err := mongodriver.NewCursorStream(ctx, srcCollection, int32(*pageSize))
	if err != nil {
		log.Printf("copytool: opening source cursor: %v", err)
		os.Exit(1)
	}

	var stream document.DocumentStream = cursorStream
	var orchestrator *keepalive.Orchestrator
	if *keepAliveMs > 0 {
		orchestrator = keepalive.New(*keepAliveMs, *timeoutMs)
		orchestrator.Start(cursorStream)
		stream = orchestratorStream{orchestrator}
	}

	driver := mongodriver.New(dstCollection)
	if created, err := driver.EnsureTargetExists(ctx); err != nil {
		log.Printf("copytool: ensuring destination exists: %v", err)
		os.Exit(1)
	} else if created {
		log.Printf("copytool: created destination collection %s.%s", *dstDB, *dstCol)
	}

	w := writer.New(driver, mongodriver.ClassifyError, mongodriver.ExtractPartialProgress)

	start := time.Now()
	onProgress := func(delta int, summary string) {
		log.Printf("copytool: +%d documents (%s), elapsed %s", delta, summary, time.Since(start).Round(time.Second))
	}

	stats, err := w.Write(ctx, stream, strat, onProgress, func() bool { return ctx.Err() != nil })
	if orchestrator != nil {
		kaStats := orchestrator.Stop()
		log.Printf("copytool: keep-alive performed %d background reads, max buffer %d", kaStats.KeepAliveReadCount, kaStats.MaxBufferLength)
	}
	if err != nil {
		log.Printf("copytool: copy failed after %d documents: %v", stats.TotalProcessed, err)
		os.Exit(1)
	}

	log.Printf("copytool: done in %s: strategy=%s processed=%d inserted=%d skipped=%d replaced=%d created=%d aborted=%d flushes=%d",
		time.Since(start).Round(time.Second), stats.Strategy, stats.TotalProcessed, stats.Inserted, stats.Skipped, stats.Replaced, stats.Created, stats.Aborted, stats.FlushCount)
}

// orchestratorStream adapts keepalive.Orchestrator's two-argument Next
// back onto the document.DocumentStream interface the writer expects.
type orchestratorStream struct {
	o *keepalive.Orchestrator
}

func (s orchestratorStream) Next(ctx context.Context) (document.Document, bool, error) {
	return s.o.Next(ctx, func() bool { return ctx.Err() != nil })
}

func (s orchestratorStream) Release(ctx context.Context) error {
	s.o.Stop()
	return nil
}
