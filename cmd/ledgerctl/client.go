package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

func newClient(api string) *resty.Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(api, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	if adminKeyFlag != "" {
		c.SetAuthToken(adminKeyFlag)
	}
	return c
}

// do sends one request and pretty-prints the JSON answer to out. Non-2xx
// responses become errors carrying the server's message.
func do(ctx context.Context, c *resty.Client, method, path string, body interface{}, out io.Writer) error {
	req := c.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	var v interface{}
	if err := json.Unmarshal(resp.Body(), &v); err != nil {
		_, err = out.Write(resp.Body())
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
