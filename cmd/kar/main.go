// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command kar builds, lists and extracts kar asset archives.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"golang.org/x/exp/mmap"

	"github.com/devblok/depot/kar"
)

func init() {
	u, err := user.Current()
	if err != nil {
		currentUserName = "unknown"
		return
	}
	currentUserName = u.Name
}

var (
	currentUserName string
	author          = flag.String("author", currentUserName, "Set the author of the package when compressing")
	version         = flag.Int64("version", 1, "Archive version number to create it with")
	extract         = flag.String("e", "", "Extract the given archive")
	list            = flag.String("l", "", "List the contents of the given archive")
	compress        = flag.String("c", "", "Compress the given file/folder")
	dstFile         = flag.String("f", "out.kar", "Destination file")
	outDir          = flag.String("o", ".", "Directory extracted files are written to")
)

func main() {
	var opMade bool
	flag.Parse()

	if *extract != "" && *compress != "" {
		fail(errors.New("only one operation at a time"))
	}

	if *extract != "" {
		opMade = true
		if err := extractFiles(); err != nil {
			fail(err)
		}
	}

	if *list != "" {
		opMade = true
		if err := listFiles(); err != nil {
			fail(err)
		}
	}

	if *compress != "" {
		opMade = true
		if err := compressFiles(); err != nil {
			fail(err)
		}
	}

	if !opMade {
		flag.PrintDefaults()
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func compressFiles() error {
	if _, err := os.Stat(*dstFile); err == nil {
		return errors.New("destination file exists, will not overwrite")
	}

	dst, err := os.Create(*dstFile)
	if err != nil {
		return err
	}
	defer dst.Close()

	var filesToCompress []string
	if err := filepath.Walk(*compress, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		filesToCompress = append(filesToCompress, path)
		return nil
	}); err != nil {
		return err
	}

	karBuilder, err := kar.NewBuilder(kar.Header{
		Author:      *author,
		DateCreated: time.Now().Unix(),
		Version:     *version,
	})
	if err != nil {
		return err
	}

	for _, ftc := range filesToCompress {
		f, err := os.Open(ftc)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(ftc)
		if err := karBuilder.Add(name, f); err != nil {
			f.Close()
			return err
		}
		f.Close()
	}

	_, err = karBuilder.WriteTo(dst)
	return err
}

func openArchive(path string) (*kar.Archive, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	return kar.Open(r)
}

func listFiles() error {
	ar, err := openArchive(*list)
	if err != nil {
		return err
	}
	header := ar.Header()
	fmt.Printf("%s version %d, created %s\n", header.Author, header.Version, time.Unix(header.DateCreated, 0))
	for _, entry := range header.Index {
		fmt.Printf("%12d  %s\n", entry.Size, entry.Name)
	}
	return nil
}

func extractFiles() error {
	ar, err := openArchive(*extract)
	if err != nil {
		return err
	}
	for _, name := range ar.Names() {
		data, err := ar.ReadAll(name)
		if err != nil {
			return err
		}
		target := filepath.Join(*outDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
