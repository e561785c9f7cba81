package endpoint

import (
	"sort"

	"github.com/polywrap/near-engine/pkg/engine/config"
	"github.com/polywrap/near-engine/pkg/near"
	"github.com/polywrap/near-engine/pkg/router"
)

const NamespaceSystem = "system"

// EndpointLister returns the names of registered endpoints.
type EndpointLister interface {
	Endpoints() []string
}

type systemEndpoint struct {
	config *config.Config
	lister EndpointLister
}

func NewSystemEndpoint(config *config.Config, lister EndpointLister) *systemEndpoint {
	return &systemEndpoint{
		config: config,
		lister: lister,
	}
}

func (a *systemEndpoint) Namespace() string {
	return NamespaceSystem
}

func (a *systemEndpoint) Get() router.EndpointHandlers {
	return map[string]router.EndpointHandler{
		"getNodeInfo":  a.HandleGetNodeInfo,
		"getEndpoints": a.HandleGetEndpoints,
	}
}

type GetNodeInfoResponse struct {
	Version            string   `json:"version"`
	RPCModes           []string `json:"rpcModes"`
	AllowTrailingBytes bool     `json:"allowTrailingBytes"`
	NominationExp      int      `json:"nominationExp"`
}

func (a *systemEndpoint) HandleGetNodeInfo(w router.EndpointResponseWriter, r *router.EndpointRequest) {
	w.Write(&GetNodeInfoResponse{
		Version:            a.config.System.Version,
		RPCModes:           a.config.RPC.Modes,
		AllowTrailingBytes: a.config.Codec.AllowTrailingBytes,
		NominationExp:      near.NearNominationExp,
	})
}

type GetEndpointsResponse struct {
	Endpoints []string `json:"endpoints"`
}

func (a *systemEndpoint) HandleGetEndpoints(w router.EndpointResponseWriter, r *router.EndpointRequest) {
	endpoints := a.lister.Endpoints()
	sort.Strings(endpoints)
	w.Write(&GetEndpointsResponse{Endpoints: endpoints})
}
