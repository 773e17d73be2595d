package utils

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Storage uploads receipt scans and released-document artifacts to an
// S3-compatible bucket.
type Storage struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func (st *Storage) client() *s3.S3 {
	sess := session.Must(session.NewSession(&aws.Config{
		Region:   aws.String(st.Region),
		Endpoint: aws.String(st.Endpoint),
		Credentials: credentials.NewStaticCredentials(
			st.AccessKey, st.SecretKey, "",
		),
	}))
	return s3.New(sess)
}

// Upload stores the file under folder/fileName and returns a public URL.
func (st *Storage) Upload(file []byte, fileName string, folder string) (string, error) {
	filePath := fmt.Sprintf("%s/%s", folder, fileName)

	contentType := http.DetectContentType(file)

	_, err := st.client().PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(st.Bucket),
		Key:           aws.String(filePath),
		Body:          bytes.NewReader(file),
		ContentLength: aws.Int64(int64(len(file))),
		ContentType:   aws.String(contentType),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %v", err)
	}

	host := strings.TrimPrefix(strings.TrimPrefix(st.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", st.Bucket, host, filePath), nil
}
