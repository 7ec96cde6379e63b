package storage

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"learnhub_go/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// S3Backend stores files in an S3 bucket. References are object keys like
// "materials/2026/09/<uuid>.pdf".
type S3Backend struct {
	s3Client *s3.S3
	bucket   string
}

// NewS3Backend creates a backend against the configured bucket.
func NewS3Backend() (*S3Backend, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AppConfig.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			config.AppConfig.AWSAccessKeyID,
			config.AppConfig.AWSSecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %v", err)
	}

	return &S3Backend{
		s3Client: s3.New(sess),
		bucket:   config.AppConfig.S3BucketName,
	}, nil
}

// Store uploads data under folder/yyyy/mm with a uuid-based key.
func (s *S3Backend) Store(data []byte, folder, filename string) (string, error) {
	now := time.Now()
	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("%s/%d/%02d/%s%s", folder, now.Year(), now.Month(), uuid.New().String()[:16], ext)

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %v", err)
	}

	return key, nil
}

// Resolve downloads the object behind a reference.
func (s *S3Backend) Resolve(ref string) (io.ReadCloser, error) {
	out, err := s.s3Client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return out.Body, nil
}

// Remove deletes the object behind a reference.
func (s *S3Backend) Remove(ref string) error {
	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	return err
}
