package session

import (
	"os"
	"strconv"
	"strings"
)

const (
	EnvCamHost  = "SOCKET_SERVER_NAME_CAM"
	EnvCamPort  = "SOCKET_SERVER_PORT_CAM"
	EnvDataHost = "SOCKET_SERVER_NAME_DATA"
	EnvDataPort = "SOCKET_SERVER_PORT_DATA"

	DefaultHost     = "localhost"
	DefaultCamPort  = 7000
	DefaultDataPort = 7001
)

// Endpoint is a host and base port. The session offset is added to Port.
type Endpoint struct {
	Host string
	Port int
}

// Endpoints holds the base addresses of both channels.
type Endpoints struct {
	Cam  Endpoint
	Data Endpoint
}

// ResolveEndpoints fills empty hosts and zero ports from the environment and
// then from the built-in defaults. Values already set are kept.
func ResolveEndpoints(e Endpoints) Endpoints {
	e.Cam = resolve(e.Cam, EnvCamHost, EnvCamPort, DefaultCamPort)
	e.Data = resolve(e.Data, EnvDataHost, EnvDataPort, DefaultDataPort)
	return e
}

func resolve(ep Endpoint, hostEnv, portEnv string, defaultPort int) Endpoint {
	if ep.Host == "" {
		ep.Host = strings.TrimSpace(os.Getenv(hostEnv))
	}
	if ep.Host == "" {
		ep.Host = DefaultHost
	}
	if ep.Port <= 0 {
		if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(portEnv))); err == nil && v > 0 {
			ep.Port = v
		}
	}
	if ep.Port <= 0 {
		ep.Port = defaultPort
	}
	return ep
}
