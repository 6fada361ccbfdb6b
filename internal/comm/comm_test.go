package comm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderisk/ingestworker/internal/model"
)

func TestDetectHTTPEndpoints(t *testing.T) {
	src := []byte(`
fetch("http://api.example.com/users", {method: "POST"});
fetch("http://api.example.com/health");
axios.get("https://svc.internal/status");
requests.post("https://svc.internal/jobs");
http.Get("http://legacy.local/ping")
`)
	endpoints := DetectHTTPEndpoints(src, "client.ts")
	require.Len(t, endpoints, 5)

	var methods = make(map[string]string)
	for _, ep := range endpoints {
		methods[ep.URL] = ep.Method
	}
	assert.Equal(t, "POST", methods["http://api.example.com/users"])
	assert.Equal(t, "GET", methods["http://api.example.com/health"])
	assert.Equal(t, "GET", methods["https://svc.internal/status"])
	assert.Equal(t, "POST", methods["https://svc.internal/jobs"])
	assert.Equal(t, "GET", methods["http://legacy.local/ping"])
}

func TestDetectRpcCalls(t *testing.T) {
	src := []byte(`conn := grpc.Dial("users-service:50051")`)
	calls := DetectRpcCalls(src, []string{"@grpc/grpc-js"}, "client.go")
	require.Len(t, calls, 2)
	assert.Equal(t, "users-service:50051", calls[0].Target)
	assert.Equal(t, "grpc-js", calls[1].Target)
}

func TestScanProtoServices(t *testing.T) {
	src := []byte("syntax = \"proto3\";\n\nservice UserService {\n  rpc Get(Req) returns (Res);\n}\n")
	calls := ScanProtoServices(src)
	require.Len(t, calls, 1)
	assert.Equal(t, "UserService", calls[0].Target)
	assert.Equal(t, "proto", calls[0].FilePath)
}

func TestDetectQueueTopics(t *testing.T) {
	src := []byte(`
producer.send(message, "orders.created");
consumer.subscribe(handler, "orders.created");
kafka.publish(payload, "payments.processed");
`)
	topics := DetectQueueTopics(src, "worker.go")
	require.Len(t, topics, 3)
	// producer matches are listed before consumer matches
	assert.True(t, topics[0].Produces)
	assert.True(t, topics[1].Produces)
	assert.False(t, topics[2].Produces)
}

func TestParseComposeFile(t *testing.T) {
	src := []byte(`
version: "3"
services:
  api:
    image: myorg/api
    ports:
      - "8080:8080"
      - "9090:9090"
  db:
    image: postgres
`)
	services := ParseComposeFile(src)
	require.Len(t, services, 2)
	assert.Equal(t, "api", services[0].Name)
	assert.Equal(t, []string{"8080:8080", "9090:9090"}, services[0].Ports)
	assert.Equal(t, "db", services[1].Name)
	assert.Empty(t, services[1].Ports)
}

func TestLinkEndpointsToCompose(t *testing.T) {
	endpoints := []model.Endpoint{
		{URL: "http://api/users", Method: "GET", Host: "api", FilePath: "client.ts"},
		{URL: "http://unrelated.example.com/x", Method: "GET", Host: "unrelated.example.com", FilePath: "client.ts"},
	}
	services := []model.ComposeService{{Name: "api", Ports: []string{"8080:8080"}}}

	links := LinkEndpointsToCompose(endpoints, services)
	require.Len(t, links, 1)
	assert.Equal(t, "api", links[0].ComposeService)
	assert.Equal(t, "http://api/users", links[0].Endpoint.URL)
}
