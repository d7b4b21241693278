package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/slotswap/internal/logging"
	sc "github.com/dmitrijs2005/slotswap/internal/server/config"
	"github.com/dmitrijs2005/slotswap/internal/server/models"
)

// Receipt records a resolved swap: the request in its terminal state and
// both slots as they were committed.
type Receipt struct {
	Request *models.ExchangeRequest `json:"request"`
	Offered *models.Slot            `json:"offered_slot"`
	Desired *models.Slot            `json:"desired_slot"`
}

// ReceiptSink receives receipts after the response transaction committed.
// Enqueue must not block the caller.
type ReceiptSink interface {
	Enqueue(ctx context.Context, r Receipt)
}

// ReceiptKey is the object key of a receipt, partitioned by response day.
func ReceiptKey(r Receipt) string {
	d := r.Request.CreatedAt
	if r.Request.RespondedAt != nil {
		d = *r.Request.RespondedAt
	}
	d = d.UTC()
	return fmt.Sprintf("receipts/%04d/%02d/%02d/%s.json", d.Year(), d.Month(), d.Day(), r.Request.ID)
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// drainTimeout bounds how long Run keeps writing queued receipts after its
// context is cancelled.
const drainTimeout = 5 * time.Second

// ReceiptArchiver writes receipts to an S3 bucket from a background worker.
// A full queue drops the receipt with a warning; archive failures are logged
// and never reach the swap caller.
type ReceiptArchiver struct {
	bucket string
	client objectPutter
	queue  chan Receipt
	logger logging.Logger
}

// NewReceiptArchiver builds an archiver for the bucket configured in cfg.
func NewReceiptArchiver(ctx context.Context, cfg *sc.Config, logger logging.Logger) (*ReceiptArchiver, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3RootUser != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3RootUser, cfg.S3RootPassword, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newReceiptArchiver(client, cfg.S3Bucket, cfg.ReceiptQueueSize, logger), nil
}

func newReceiptArchiver(client objectPutter, bucket string, size int, logger logging.Logger) *ReceiptArchiver {
	return &ReceiptArchiver{
		bucket: bucket,
		client: client,
		queue:  make(chan Receipt, size),
		logger: logger.With("module", "receipt_archiver"),
	}
}

func (a *ReceiptArchiver) Enqueue(ctx context.Context, r Receipt) {
	select {
	case a.queue <- r:
	default:
		a.logger.Warn(ctx, "receipt queue full, dropping receipt", "request_id", r.Request.ID)
	}
}

// Run archives queued receipts until ctx is done, then flushes what is
// still queued within drainTimeout.
func (a *ReceiptArchiver) Run(ctx context.Context) error {
	for {
		select {
		case r := <-a.queue:
			a.archive(ctx, r)
		case <-ctx.Done():
			a.drain(ctx)
			return nil
		}
	}
}

func (a *ReceiptArchiver) drain(parent context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), drainTimeout)
	defer cancel()
	for {
		select {
		case r := <-a.queue:
			a.archive(ctx, r)
		default:
			return
		}
	}
}

func (a *ReceiptArchiver) archive(ctx context.Context, r Receipt) {
	body, err := json.Marshal(r)
	if err != nil {
		a.logger.Error(ctx, "receipt encode failed", "request_id", r.Request.ID, "error", err)
		return
	}

	key := ReceiptKey(r)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		a.logger.Error(ctx, "receipt upload failed", "key", key, "error", err)
		return
	}
	a.logger.Debug(ctx, "receipt archived", "key", key)
}
