/*
Copyright 2025 The llm-d Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package client wraps the KVStoreService gRPC API for inference workers.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"

	"github.com/llm-d/llm-d-kv-store-service/pkg/api/kvstorepb"
)

// maxMessageSize matches the server's 100 MiB message cap.
const maxMessageSize = 100 * 1024 * 1024

// requestIDKey is the metadata header carrying a per-request correlation id.
const requestIDKey = "request-id"

// Config holds the configuration for a Client.
type Config struct {
	// Target is the server address, e.g. "localhost:50051".
	Target string `json:"target"`
}

// Client is a thin wrapper over the generated KVStoreService client with
// the channel tuning the service expects.
type Client struct {
	conn *grpc.ClientConn
	rpc  kvstorepb.KVStoreServiceClient
}

// New dials the target with the service's keepalive and message-size
// settings.
func New(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.Target == "" {
		return nil, fmt.Errorf("client requires a target address")
	}

	conn, err := grpc.NewClient(cfg.Target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxMessageSize),
			grpc.MaxCallSendMsgSize(maxMessageSize),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %q: %w", cfg.Target, err)
	}

	return &Client{conn: conn, rpc: kvstorepb.NewKVStoreServiceClient(conn)}, nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// withRequestID attaches a fresh correlation id to the outgoing context.
func withRequestID(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, requestIDKey, uuid.NewString())
}

// Lookup probes a token sequence and returns the cached prefix.
func (c *Client) Lookup(ctx context.Context, req *kvstorepb.LookupRequest) (*kvstorepb.LookupResponse, error) {
	return c.rpc.Lookup(withRequestID(ctx), req)
}

// Read downloads the block stored at one location.
func (c *Client) Read(ctx context.Context, req *kvstorepb.ReadRequest) (*kvstorepb.ReadResponse, error) {
	return c.rpc.Read(withRequestID(ctx), req)
}

// Write stores one block.
func (c *Client) Write(ctx context.Context, req *kvstorepb.WriteRequest) (*kvstorepb.WriteResponse, error) {
	return c.rpc.Write(withRequestID(ctx), req)
}

// StreamingRead opens a pipelined read stream.
func (c *Client) StreamingRead(ctx context.Context) (kvstorepb.KVStoreService_StreamingReadClient, error) {
	return c.rpc.StreamingRead(withRequestID(ctx))
}
