// Package comm implements the communication detector (C7): a best-effort
// regex layer over file text that surfaces HTTP endpoints, RPC dials,
// message-queue topics, and docker-compose service declarations.
package comm

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/coderisk/ingestworker/internal/model"
)

var (
	fetchWithMethod = regexp.MustCompile(`fetch\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]\s*,\s*\{[^}]*method\s*:\s*["']([A-Za-z]+)["']`)
	fetchBare       = regexp.MustCompile(`fetch\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]\s*\)`)
	axiosVerb       = regexp.MustCompile(`axios\.(get|post|put|delete|patch|head|options)\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`)
	requestsVerb    = regexp.MustCompile(`requests\.(get|post|put|delete|patch|head|options)\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`)
	httpGoVerb      = regexp.MustCompile(`http\.(Get|Post|Put|Delete|Patch|Head)\(\s*["]([^"]+)["]`)
)

// DetectHTTPEndpoints scans file text for recognized HTTP call patterns.
func DetectHTTPEndpoints(content []byte, filePath string) []model.Endpoint {
	text := string(content)
	var endpoints []model.Endpoint
	seen := make(map[model.Endpoint]struct{})

	add := func(rawURL, method string) {
		host := hostOf(rawURL)
		ep := model.Endpoint{URL: rawURL, Method: strings.ToUpper(method), Host: host, FilePath: filePath}
		if _, ok := seen[ep]; ok {
			return
		}
		seen[ep] = struct{}{}
		endpoints = append(endpoints, ep)
	}

	fetchHandled := make(map[string]struct{})
	for _, m := range fetchWithMethod.FindAllStringSubmatch(text, -1) {
		add(m[1], m[2])
		fetchHandled[m[1]] = struct{}{}
	}
	for _, m := range fetchBare.FindAllStringSubmatch(text, -1) {
		if _, ok := fetchHandled[m[1]]; ok {
			continue
		}
		add(m[1], "GET")
	}
	for _, m := range axiosVerb.FindAllStringSubmatch(text, -1) {
		add(m[2], m[1])
	}
	for _, m := range requestsVerb.FindAllStringSubmatch(text, -1) {
		add(m[2], m[1])
	}
	for _, m := range httpGoVerb.FindAllStringSubmatch(text, -1) {
		add(m[2], m[1])
	}

	return endpoints
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

var (
	grpcDial   = regexp.MustCompile(`grpc\.Dial\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`)
	protoSvc   = regexp.MustCompile(`(?m)^\s*service\s+(\w+)`)
	grpcJSImport = "@grpc/grpc-js"
)

// DetectRpcCalls scans file text and its import set for RPC dials.
func DetectRpcCalls(content []byte, imports []string, filePath string) []model.RpcCall {
	text := string(content)
	var calls []model.RpcCall

	for _, m := range grpcDial.FindAllStringSubmatch(text, -1) {
		calls = append(calls, model.RpcCall{Target: m[1], FilePath: filePath})
	}

	for _, imp := range imports {
		if strings.Contains(imp, grpcJSImport) {
			calls = append(calls, model.RpcCall{Target: "grpc-js", FilePath: filePath})
			break
		}
	}

	return calls
}

// ScanProtoServices extracts `service <Name>` declarations from .proto file
// content; the spec fixes file_path to the literal "proto" for these.
func ScanProtoServices(content []byte) []model.RpcCall {
	var calls []model.RpcCall
	for _, m := range protoSvc.FindAllStringSubmatch(string(content), -1) {
		calls = append(calls, model.RpcCall{Target: m[1], FilePath: "proto"})
	}
	return calls
}

var (
	queueProduce = regexp.MustCompile(`(?:producer\.send|kafka\.publish|channel\.publish)\(([^)]*)\)`)
	queueConsume = regexp.MustCompile(`(?:consumer\.subscribe|kafka\.subscribe)\(([^)]*)\)`)
	quotedArg    = regexp.MustCompile(`["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`)
)

// DetectQueueTopics scans file text for producer/consumer queue call sites.
func DetectQueueTopics(content []byte, filePath string) []model.QueueTopic {
	text := string(content)
	var topics []model.QueueTopic

	for _, m := range queueProduce.FindAllStringSubmatch(text, -1) {
		if topic := lastQuoted(m[1]); topic != "" {
			topics = append(topics, model.QueueTopic{Topic: topic, FilePath: filePath, Produces: true})
		}
	}
	for _, m := range queueConsume.FindAllStringSubmatch(text, -1) {
		if topic := lastQuoted(m[1]); topic != "" {
			topics = append(topics, model.QueueTopic{Topic: topic, FilePath: filePath, Produces: false})
		}
	}

	return topics
}

func lastQuoted(argText string) string {
	matches := quotedArg.FindAllStringSubmatch(argText, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1][1]
}

// ParseComposeFile is a minimalist line-oriented scan of a docker-compose-
// like YAML file: service names come from indent-2 keys under `services:`;
// port strings come from indent->=6 list items under each service's `ports:`.
func ParseComposeFile(content []byte) []model.ComposeService {
	lines := strings.Split(string(content), "\n")
	var services []model.ComposeService

	inServices := false
	var current *model.ComposeService
	inPorts := false

	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimLeft(line, " ")
		indent := len(line) - len(trimmed)

		if !inServices {
			if strings.TrimSpace(line) == "services:" {
				inServices = true
			}
			continue
		}

		if trimmed == "" {
			continue
		}

		if indent == 2 && strings.HasSuffix(trimmed, ":") {
			name := strings.TrimSuffix(trimmed, ":")
			services = append(services, model.ComposeService{Name: name})
			current = &services[len(services)-1]
			inPorts = false
			continue
		}

		if current == nil {
			continue
		}

		if indent == 4 && trimmed == "ports:" {
			inPorts = true
			continue
		}
		if indent == 4 {
			inPorts = false
			continue
		}

		if inPorts && indent >= 6 && strings.HasPrefix(trimmed, "-") {
			port := strings.TrimSpace(strings.TrimPrefix(trimmed, "-"))
			port = strings.Trim(port, `"'`)
			current.Ports = append(current.Ports, port)
		}
	}

	return services
}

// EndpointLink pairs an Endpoint with the ComposeService it resolves to.
type EndpointLink struct {
	Endpoint       model.Endpoint
	ComposeService string
}

// LinkEndpointsToCompose emits an ExposedBy link for every (endpoint,
// service) pair where the endpoint's host contains the service name.
func LinkEndpointsToCompose(endpoints []model.Endpoint, services []model.ComposeService) []EndpointLink {
	var links []EndpointLink
	for _, ep := range endpoints {
		if ep.Host == "" {
			continue
		}
		for _, svc := range services {
			if strings.Contains(ep.Host, svc.Name) {
				links = append(links, EndpointLink{Endpoint: ep, ComposeService: svc.Name})
			}
		}
	}
	return links
}
