package storage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/ashevelev/chatweb/pkg/domain"
)

const uploadFolder = "chatgpt-clone"

// CloudinaryClient uploads files to the Cloudinary REST API using the
// auto resource type, so one endpoint serves images and plain files
// alike.
type CloudinaryClient struct {
	cloudName string
	apiKey    string
	apiSecret string
	hc        *http.Client
}

func NewCloudinaryClient(cloudName, apiKey, apiSecret string) (*CloudinaryClient, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials are incomplete")
	}
	return &CloudinaryClient{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		hc:        &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload stores one file and returns its public URL.
func (c *CloudinaryClient) Upload(ctx context.Context, file domain.FileUpload) (string, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"folder":    uploadFolder,
		"timestamp": timestamp,
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range params {
		if err := mw.WriteField(k, v); err != nil {
			return "", fmt.Errorf("writing form field: %w", err)
		}
	}
	if err := mw.WriteField("api_key", c.apiKey); err != nil {
		return "", fmt.Errorf("writing form field: %w", err)
	}
	if err := mw.WriteField("signature", c.sign(params)); err != nil {
		return "", fmt.Errorf("writing form field: %w", err)
	}

	fw, err := mw.CreateFormFile("file", file.Name)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := fw.Write(file.Data); err != nil {
		return "", fmt.Errorf("writing file data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing multipart body: %w", err)
	}

	u := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/auto/upload", c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading file: %w", err)
	}
	defer resp.Body.Close()

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if result.Error.Message != "" {
			return "", fmt.Errorf("cloudinary: %s: %w", result.Error.Message, domain.ErrUpstream)
		}
		return "", fmt.Errorf("cloudinary status %d: %w", resp.StatusCode, domain.ErrUpstream)
	}

	return result.SecureURL, nil
}

// sign produces the Cloudinary request signature: SHA-1 over the
// alphabetically sorted parameters plus the API secret.
func (c *CloudinaryClient) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var toSign bytes.Buffer
	for i, k := range keys {
		if i > 0 {
			toSign.WriteByte('&')
		}
		toSign.WriteString(k + "=" + params[k])
	}
	toSign.WriteString(c.apiSecret)

	sum := sha1.Sum(toSign.Bytes())
	return hex.EncodeToString(sum[:])
}
