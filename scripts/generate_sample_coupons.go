//go:build ignore

// Command generate_sample_coupons writes a gzipped JSON-lines import file
// with a mix of valid, duplicate and invalid creation requests.
//
//	go run scripts/generate_sample_coupons.go -n 1000 -out data/coupons.jsonl.gz
package main

import (
	"compress/gzip"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"coupon-service/internal/model"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func main() {
	n := flag.Int("n", 1000, "number of valid coupons")
	out := flag.String("out", "data/coupons.jsonl.gz", "output file")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create directory: %v\n", err)
		os.Exit(1)
	}

	requests := make([]model.CouponRequest, 0, *n+4)
	for i := 0; i < *n; i++ {
		requests = append(requests, validRequest(i))
	}

	// Edge cases the importer should report rather than create.
	if *n > 0 {
		requests = append(requests, requests[0])
	}
	requests = append(requests,
		withCode(validRequest(*n), "AB#1"),
		withDiscount(validRequest(*n+1), "0.4"),
		withExpiration(validRequest(*n+2), time.Now().AddDate(0, 0, -1)),
	)

	if err := writeFile(*out, requests); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", *out, err)
		os.Exit(1)
	}

	fmt.Printf("Created %s with %d requests (%d valid)\n", *out, len(requests), *n)
}

func validRequest(i int) model.CouponRequest {
	code := make([]byte, 6)
	for j := range code {
		code[j] = alphabet[rand.IntN(len(alphabet))]
	}
	// Keep codes unique by embedding the index in the last four characters.
	copy(code[2:], fmt.Sprintf("%04d", i%10000))

	discount := decimal.NewFromInt(int64(rand.IntN(50) + 1)).Div(decimal.NewFromInt(2))
	expiration := time.Now().AddDate(0, 0, rand.IntN(365)+1).UTC().Truncate(time.Second)

	return model.CouponRequest{
		Code:           string(code),
		Description:    fmt.Sprintf("Sample coupon %d", i),
		DiscountValue:  &discount,
		ExpirationDate: &expiration,
		Published:      i%2 == 0,
	}
}

func withCode(r model.CouponRequest, code string) model.CouponRequest {
	r.Code = code
	return r
}

func withDiscount(r model.CouponRequest, value string) model.CouponRequest {
	d := decimal.RequireFromString(value)
	r.DiscountValue = &d
	return r
}

func withExpiration(r model.CouponRequest, t time.Time) model.CouponRequest {
	r.ExpirationDate = &t
	return r
}

func writeFile(filePath string, requests []model.CouponRequest) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	enc := json.NewEncoder(gzipWriter)
	for _, r := range requests {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to write request: %w", err)
		}
	}

	return gzipWriter.Close()
}
