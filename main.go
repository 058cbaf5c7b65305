package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"filebrowser/server"
	"filebrowser/store"
	"filebrowser/tui"
)

func main() {
	var port uint
	var root string
	var tuiMode bool

	flag.UintVar(&port, "port", 1234, "The port to listen on")
	flag.StringVar(&root, "root", "", "The sandbox root directory (defaults to ~/Documents)")
	flag.BoolVar(&tuiMode, "tui", false, "Browse the root in the terminal instead of serving")
	flag.Parse()

	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("cannot resolve home directory: %v", err)
		}
		root = filepath.Join(home, "Documents")
	}

	if err := os.MkdirAll(root, 0750); err != nil {
		log.Fatalf("cannot create root directory %s: %v", root, err)
	}

	if tuiMode {
		logger := log.New(os.Stderr, "[browse] ", log.LstdFlags)
		st := store.New(store.NewLocalFileSystem(logger), root)
		if err := tui.Run(st); err != nil {
			log.Fatal(err)
		}
		return
	}

	log.Fatal(server.Start(port, root))
}
