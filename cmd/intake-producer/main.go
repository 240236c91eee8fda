//nolint:mnd
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"umkmorder/internal/config"
	"umkmorder/internal/entity"
	"umkmorder/internal/pricing"
	"umkmorder/pkg/kafka"
	"umkmorder/pkg/logger"

	"github.com/brianvoe/gofakeit/v7"
	kafkago "github.com/segmentio/kafka-go"
)

func main() {
	brokers := flag.String(
		"brokers",
		"kafka:29092",
		"Kafka bootstrap brokers to connect to, as a comma separated list",
	)
	topic := flag.String("topic", "umkm-submissions", "Kafka topic to write submissions to")
	numMessages := flag.Int("count", 1, "Number of submissions to send")
	interval := flag.Duration("interval", time.Second, "Interval between submissions")
	cutoffDay := flag.Int("cutoff-day", pricing.DefaultCutoffDay, "Day of month after which next month closes")
	invalid := flag.Bool("invalid", false, "Send submissions that fail validation")

	flag.Parse()

	log, err := logger.NewAdapter(&config.Config{
		App: config.App{Name: "intake-producer", Version: "dev"},
		Env: "local",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	writer := kafka.NewWriter(strings.Split(*brokers, ","), *topic, log)
	defer writer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Infow("starting intake producer",
		"count", *numMessages,
		"topic", *topic,
		"brokers", *brokers,
		"interval", interval.String(),
	)

	window := pricing.WindowFor(time.Now(), *cutoffDay, pricing.DefaultWindowMonths)
	packages := pricing.DefaultPackages()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for sent := 0; sent < *numMessages; {
		sendSubmission(ctx, writer, generateFakeSubmission(window, packages, *invalid), log)
		sent++
		if sent >= *numMessages {
			break
		}

		select {
		case <-ctx.Done():
			log.Infow("shutting down producer", "sent", sent)
			return
		case <-ticker.C:
		}
	}

	log.Infow("sent all submissions", "count", *numMessages)
}

func sendSubmission(ctx context.Context, writer *kafkago.Writer, sub *entity.Submission, log logger.Logger) {
	payload, err := json.Marshal(sub)
	if err != nil {
		log.Errorw("failed to marshal submission", "error", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	msg := kafkago.Message{
		Key:   []byte(sub.Instagram),
		Value: payload,
	}
	if err = writer.WriteMessages(writeCtx, msg); err != nil {
		log.Errorw("failed to write submission to kafka", "error", err)
		return
	}

	log.Infow("submission sent",
		"brand_name", sub.BrandName,
		"products", len(sub.Products),
	)
}

func generateFakeSubmission(
	window pricing.Window,
	packages []entity.EndorsementPackage,
	invalid bool,
) *entity.Submission {
	months := window.Months()
	productsCount := gofakeit.Number(1, 3)
	products := make([]entity.SubmissionProduct, 0, productsCount)

	for range productsCount {
		products = append(products, entity.SubmissionProduct{
			Description:     gofakeit.ProductDescription(),
			EndorsementType: packages[gofakeit.Number(0, len(packages)-1)].Value,
			EndorseMonth:    months[gofakeit.Number(0, len(months)-1)],
			Photo:           gofakeit.URL(),
		})
	}

	sub := &entity.Submission{
		CustomerName: gofakeit.Name(),
		BrandName:    gofakeit.Company(),
		Instagram:    "@" + gofakeit.Username(),
		Email:        gofakeit.Email(),
		Phone:        "08" + gofakeit.Numerify("##########"),
		Products:     products,
	}

	if invalid {
		sub.BrandName = ""
		sub.Products[0].EndorseMonth = window.Earliest.AddMonths(-1)
	}

	return sub
}
