// This command line tool tags wav files with production metadata by
// injecting iXML and bext chunks. The original file is kept next to the
// tagged one as a .bak copy.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prodsound/wavmeta"
)

var (
	flagFileToTag = flag.String("file", "", "Path to the wave file to tag")
	flagDirToTag  = flag.String("dir", "", "Directory containing all the wav files to tag")
	//
	flagShow        = flag.String("show", "", "Production or show name")
	flagScene       = flag.String("scene", "", "Scene identifier, e.g. 5.14D")
	flagTake        = flag.String("take", "", "Take number")
	flagCategory    = flag.String("category", "", "Sound category")
	flagSubcategory = flag.String("subcategory", "", "Sound subcategory")
	flagSlate       = flag.String("slate", "", "Slate identifier")
	flagNote        = flag.String("note", "", "Free-form note")
	flagCircled     = flag.String("circled", "", "Circled/good-take marker, e.g. TRUE")
)

func main() {
	flag.Parse()

	if *flagFileToTag == "" && *flagDirToTag == "" {
		fmt.Println("You need to pass -file or -dir to indicate what file or folder content to tag.")
		os.Exit(1)
	}

	if *flagFileToTag != "" {
		err := tagFile(*flagFileToTag)
		if err != nil {
			fmt.Printf("Something went wrong when tagging %s - error: %v\n", *flagFileToTag, err)
			os.Exit(1)
		}
	}

	if *flagDirToTag != "" {
		var filePath string

		fileInfos, _ := os.ReadDir(*flagDirToTag)
		for _, fi := range fileInfos {
			if strings.EqualFold(filepath.Ext(fi.Name()), ".wav") {
				filePath = filepath.Join(*flagDirToTag, fi.Name())

				err := tagFile(filePath)
				if err != nil {
					fmt.Printf("Something went wrong tagging %s - %v\n", filePath, err)
				}
			}
		}
	}
}

// tagFile merges the flag values over the metadata already present in the
// file, so untouched fields survive re-tagging.
func tagFile(path string) error {
	rec := wavmeta.ReadFile(path)
	if rec.Error != "" {
		return fmt.Errorf("failed to read %s: %s", path, rec.Error)
	}

	applyFlag(&rec.Show, *flagShow)
	applyFlag(&rec.Scene, *flagScene)
	applyFlag(&rec.Take, *flagTake)
	applyFlag(&rec.Category, *flagCategory)
	applyFlag(&rec.Subcategory, *flagSubcategory)
	applyFlag(&rec.Slate, *flagSlate)
	applyFlag(&rec.Note, *flagNote)
	applyFlag(&rec.Circled, *flagCircled)

	return wavmeta.WriteFile(path, rec)
}

func applyFlag(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
