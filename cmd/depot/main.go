// Command depot loads assets through the resource manager and prints
// their resulting state and dependency tree. It is the quickest way to
// check that a set of assets is loadable outside the engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/depot/model"
	"github.com/devblok/depot/resource"
	"github.com/devblok/depot/shader"
	"github.com/devblok/depot/texture"
)

var (
	timeout = flag.Duration("timeout", 30*time.Second, "How long to wait for all loads to finish")
	events  = flag.Bool("events", false, "Print resource events as they arrive")
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: depot [flags] asset...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := godotenv.Load(); err == nil {
		log.Info("loaded configuration from .env")
	}
	cfg := resource.ConfigFromEnv()

	manager := resource.New(resource.DirIO{Root: cfg.AssetRoot}, cfg)
	defer manager.Close()

	manager.RegisterLoader(texture.Loader{})
	manager.RegisterLoader(model.Loader{})
	manager.RegisterLoader(shader.Loader{})
	if err := texture.RegisterBuiltIns(manager); err != nil {
		log.Fatal(err)
	}
	for _, err := range manager.Registry().Validate() {
		log.Warn(err)
	}

	if *events {
		sub := manager.Subscribe(nil)
		defer sub.Close()
		go func() {
			for event := range sub.Events() {
				log.Infof("event: %s %s -> %s", event.Kind, event.Identity, event.Status)
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	handles := make([]*resource.Handle, 0, flag.NArg())
	for _, path := range flag.Args() {
		handles = append(handles, manager.Request(path))
	}

	failed := false
	for _, handle := range handles {
		if _, err := handle.Wait(ctx); err != nil {
			log.Errorf("%s: %v", handle.Identity(), err)
			failed = true
		}
		printTree(resource.BuildDependencyGraph(handle), 0)
		handle.Release()
	}
	if failed {
		os.Exit(1)
	}
}

func printTree(node *resource.DependencyNode, depth int) {
	fmt.Printf("%s%s [%s] %s\n", strings.Repeat("  ", depth), node.Identity, node.Status, node.Type)
	for _, child := range node.Children {
		printTree(child, depth+1)
	}
}
