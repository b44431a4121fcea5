package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/firewatch/firewatch-risk-api/internal/dataset"
	"github.com/firewatch/firewatch-risk-api/internal/notification"
	"github.com/firewatch/firewatch-risk-api/internal/properties"
	"github.com/firewatch/firewatch-risk-api/internal/sentinel"
	"github.com/joho/godotenv"
)

func printBanner() {
	figure1 := figure.NewFigure("Firewatch", "isometric1", true)
	figure2 := figure.NewFigure("Research", "isometric1", true)
	bannercolor.Red(figure1.String())
	bannercolor.Red(figure2.String())
	fmt.Println()
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}
	initCLI()
}

func initCLI() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mExiting...\033[0m\n")

			errMessage := fmt.Sprintf("Firewatch research CLI panic:\n\n%v\n\nStack trace:\n%s", r, debug.Stack())
			if err := notification.SendDiscordErrorNotification(errMessage); err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
		}
	}()
	printBanner()

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Println("\033[34m===================\033[0m")
		fmt.Println("\033[34m1. Sample fire points from FIRMS archives\033[0m")
		fmt.Println("\033[34m2. Build a training dataset\033[0m")
		fmt.Println("\033[34m3. Exit\033[0m")
		fmt.Println("\033[34mEnter your choice:\033[0m")

		var choice int
		_, err := fmt.Scan(&choice)
		if err != nil {
			fmt.Printf("\n\033[31mInvalid input. Please enter a number.\033[0m\n")
			fmt.Scanln()
			continue
		}

		switch choice {
		case 1:
			sampleFirePoints(reader)
		case 2:
			buildDataset(reader)
		case 3:
			fmt.Println("\033[32mExiting...\033[0m")
			return
		default:
			fmt.Printf("\n\033[31mInvalid choice. Please try again.\033[0m\n")
		}
	}
}

func sampleFirePoints(reader *bufio.Reader) {
	fmt.Println("\033[33m\nWarning:\033[0m")
	fmt.Println("\033[33m- FIRMS country CSVs should be present in the data/fires folder.\033[0m")
	fmt.Println("\033[33m- Each CSV needs latitude, longitude, acq_date and confidence columns.\n\033[0m")

	fmt.Print("\033[34mEnter the number of fire points to sample: \033[0m")
	countInput, _ := reader.ReadString('\n')
	target, err := strconv.Atoi(strings.TrimSpace(countInput))
	if err != nil || target <= 0 {
		fmt.Printf("\n\033[31mInvalid count. Please enter a positive number.\033[0m\n")
		return
	}

	inputDir := fmt.Sprintf("%s/data/fires", properties.RootPath())
	outputFile := fmt.Sprintf("%s/data/sampled_points.csv", properties.RootPath())

	points, err := dataset.SampleFirePoints(inputDir, target)
	if err != nil {
		fmt.Printf("\n\033[31mError sampling fire points: %s\033[0m\n", err.Error())
		return
	}

	if err := dataset.WriteSampledPoints(points, outputFile); err != nil {
		fmt.Printf("\n\033[31mError writing sampled points: %s\033[0m\n", err.Error())
		return
	}

	fmt.Printf("\033[32mSampled %d points into %s\033[0m\n", len(points), outputFile)
}

func buildDataset(reader *bufio.Reader) {
	fmt.Println("\033[33m\nWarning:\033[0m")
	fmt.Println("\033[33m- A sampled points CSV should be present in the data folder.\033[0m")
	fmt.Println("\033[33m- The run is resumable: rerun with the same output file to continue.\n\033[0m")

	fmt.Print("\033[34mEnter the sampled points file name (default sampled_points.csv): \033[0m")
	inputName, _ := reader.ReadString('\n')
	inputName = strings.TrimSpace(inputName)
	if inputName == "" {
		inputName = "sampled_points.csv"
	}

	fmt.Print("\033[34mEnter the output dataset file name (default training_dataset.csv): \033[0m")
	outputName, _ := reader.ReadString('\n')
	outputName = strings.TrimSpace(outputName)
	if outputName == "" {
		outputName = "training_dataset.csv"
	}

	inputFile := fmt.Sprintf("%s/data/%s", properties.RootPath(), inputName)
	outputFile := fmt.Sprintf("%s/data/%s", properties.RootPath(), outputName)

	ctx := context.Background()
	satellite, err := sentinel.NewClient(ctx)
	if err != nil {
		fmt.Printf("\n\033[31mError creating satellite client: %s\033[0m\n", err.Error())
		return
	}

	builder := dataset.NewBuilder(satellite)
	if err := builder.Build(ctx, inputFile, outputFile); err != nil {
		fmt.Printf("\n\033[31mError building dataset: %s\033[0m\n", err.Error())
		notification.SendDiscordErrorNotification(fmt.Sprintf("Firewatch research CLI\n\nError building dataset: %s", err.Error()))
		return
	}

	fmt.Printf("\033[32mDataset written to %s\033[0m\n", outputFile)
	notification.SendDiscordSuccessNotification(fmt.Sprintf("Firewatch research CLI\n\nDataset build finished: %s", outputFile))
}
