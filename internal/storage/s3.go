package storage

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// emptyPayloadHash é o SHA-256 de corpo vazio, usado em DELETE e GET.
const emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// S3Config descreve parâmetros necessários para assinar requisições compatíveis com S3.
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	PublicDomain string
	HTTPClient   *http.Client
}

// S3Client implementa Storage usando assinatura SigV4.
type S3Client struct {
	cfg    S3Config
	client *http.Client
}

// NewS3Client cria um cliente pronto para falar com um endpoint S3/R2.
func NewS3Client(cfg S3Config) (*S3Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &S3Client{cfg: cfg, client: client}, nil
}

// Upload envia o arquivo para o bucket e devolve a URL pública (se houver).
func (c *S3Client) Upload(ctx context.Context, dir string, f File) (*Object, error) {
	if len(f.Body) == 0 {
		return nil, errors.New("storage: corpo vazio")
	}
	key, err := NewKey(dir, f.Name)
	if err != nil {
		return nil, err
	}

	contentType := strings.TrimSpace(f.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	targetURL := c.objectURL(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, targetURL, bytes.NewReader(f.Body))
	if err != nil {
		return nil, err
	}

	payloadHash := sha256.Sum256(f.Body)
	payloadHex := hex.EncodeToString(payloadHash[:])

	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(f.Body))
	req.Header.Set("x-amz-content-sha256", payloadHex)
	req.Header.Set("Content-Length", fmt.Sprintf("%d", len(f.Body)))

	if err := signS3Request(req, c.cfg, payloadHex, time.Now().UTC()); err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("storage: upload falhou (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	publicURL := targetURL
	if strings.TrimSpace(c.cfg.PublicDomain) != "" {
		escapedKey := (&url.URL{Path: key}).EscapedPath()
		publicURL = fmt.Sprintf("%s/%s", strings.TrimRight(c.cfg.PublicDomain, "/"), escapedKey)
	}

	return &Object{Key: key, URL: publicURL}, nil
}

// Delete remove o objeto do bucket. Objeto inexistente não é erro: o S3
// responde 204 de qualquer forma.
func (c *S3Client) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("storage: chave do objeto obrigatória")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(key), nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-amz-content-sha256", emptyPayloadHash)

	if err := signS3Request(req, c.cfg, emptyPayloadHash, time.Now().UTC()); err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("storage: remoção falhou (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// List devolve as chaves sob o prefixo informado.
func (c *S3Client) List(ctx context.Context, prefix string) ([]string, error) {
	endpoint := strings.TrimRight(c.cfg.Endpoint, "/")
	target := fmt.Sprintf("%s/%s?list-type=2&prefix=%s", endpoint, c.cfg.Bucket, url.QueryEscape(strings.Trim(prefix, "/")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-amz-content-sha256", emptyPayloadHash)

	if err := signS3Request(req, c.cfg, emptyPayloadHash, time.Now().UTC()); err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("storage: listagem falhou (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var listing struct {
		Contents []struct {
			Key string `xml:"Key"`
		} `xml:"Contents"`
	}
	if err := xml.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(listing.Contents))
	for _, obj := range listing.Contents {
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (c *S3Client) objectURL(key string) string {
	endpoint := strings.TrimRight(c.cfg.Endpoint, "/")
	escapedKey := (&url.URL{Path: strings.TrimLeft(key, "/")}).EscapedPath()
	return fmt.Sprintf("%s/%s/%s", endpoint, c.cfg.Bucket, escapedKey)
}

func (cfg S3Config) validate() error {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return errors.New("storage: endpoint do S3 ausente")
	}
	if strings.TrimSpace(cfg.Region) == "" {
		return errors.New("storage: região do S3 ausente")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return errors.New("storage: bucket do S3 ausente")
	}
	if strings.TrimSpace(cfg.AccessKey) == "" {
		return errors.New("storage: access key ausente")
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return errors.New("storage: secret key ausente")
	}
	if !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
		return errors.New("storage: endpoint deve incluir protocolo http/https")
	}
	return nil
}

func signS3Request(req *http.Request, cfg S3Config, payloadHash string, now time.Time) error {
	amzDate := now.UTC().Format("20060102T150405Z")
	dateStamp := now.UTC().Format("20060102")

	req.Header.Set("x-amz-date", amzDate)
	req.Header.Set("Host", req.URL.Host)

	headers, signedHeaders := canonicalHeaders(req.Header)
	canonicalRequest := strings.Join([]string{
		req.Method,
		canonicalURI(req.URL.Path),
		canonicalQueryString(req.URL.Query()),
		headers,
		signedHeaders,
		payloadHash,
	}, "\n")

	hashedCanonical := sha256.Sum256([]byte(canonicalRequest))

	credentialScope := fmt.Sprintf("%s/%s/s3/aws4_request", dateStamp, cfg.Region)
	stringToSign := strings.Join([]string{
		"AWS4-HMAC-SHA256",
		amzDate,
		credentialScope,
		hex.EncodeToString(hashedCanonical[:]),
	}, "\n")

	signingKey := deriveSigningKey(cfg.SecretKey, dateStamp, cfg.Region, "s3")
	signature := hmacSHA256(signingKey, []byte(stringToSign))

	req.Header.Set("Authorization", fmt.Sprintf(
		"AWS4-HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		cfg.AccessKey,
		credentialScope,
		signedHeaders,
		hex.EncodeToString(signature),
	))
	return nil
}

func canonicalURI(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return uriEncode(path, false)
}

func canonicalQueryString(values url.Values) string {
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		vals := values[key]
		sort.Strings(vals)
		for _, v := range vals {
			parts = append(parts, fmt.Sprintf("%s=%s", uriEncode(key, true), uriEncode(v, true)))
		}
	}
	return strings.Join(parts, "&")
}

func canonicalHeaders(h http.Header) (string, string) {
	type header struct {
		key   string
		value string
	}

	merged := make(map[string][]string)
	for k, vals := range h {
		lower := strings.ToLower(k)
		if lower == "authorization" {
			continue
		}
		merged[lower] = append(merged[lower], vals...)
	}

	if _, ok := merged["host"]; !ok {
		merged["host"] = []string{h.Get("Host")}
	}
	if _, ok := merged["x-amz-content-sha256"]; !ok {
		merged["x-amz-content-sha256"] = []string{h.Get("x-amz-content-sha256")}
	}
	if _, ok := merged["x-amz-date"]; !ok {
		merged["x-amz-date"] = []string{h.Get("x-amz-date")}
	}

	list := make([]header, 0, len(merged))
	for k, vals := range merged {
		sanitized := make([]string, 0, len(vals))
		for _, v := range vals {
			sanitized = append(sanitized, strings.TrimSpace(v))
		}
		list = append(list, header{key: k, value: strings.Join(sanitized, ",")})
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].key < list[j].key
	})

	headerLines := make([]string, len(list))
	signedHeaders := make([]string, len(list))
	for i, item := range list {
		headerLines[i] = fmt.Sprintf("%s:%s", item.key, item.value)
		signedHeaders[i] = item.key
	}

	return strings.Join(headerLines, "\n") + "\n", strings.Join(signedHeaders, ";")
}

func uriEncode(input string, encodeSlash bool) string {
	var builder strings.Builder
	for i := 0; i < len(input); i++ {
		c := input[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == '.' || c == '~' {
			builder.WriteByte(c)
			continue
		}
		if c == '/' && !encodeSlash {
			builder.WriteByte(c)
			continue
		}
		builder.WriteString(fmt.Sprintf("%%%02X", c))
	}
	return builder.String()
}

func deriveSigningKey(secret, dateStamp, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), []byte(dateStamp))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	return hmacSHA256(kService, []byte("aws4_request"))
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}
