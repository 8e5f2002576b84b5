package auth

// Endpoint scope keys, one per (verb, route) pair in spec.md §6's
// HTTP API table. Supplements the table with an explicit, hand-listed
// equivalent of what original_source/hecate_derive/src/lib.rs derived
// per-handler at compile time — here it is just string constants
// `internal/httpapi` passes to Resolve.
const (
	ScopeKeyAuthGet            = "auth.get"
	ScopeKeyFeatureCreate      = "feature.create"
	ScopeKeyFeatureForce       = "feature.force"
	ScopeKeyFeatureGet         = "feature.get"
	ScopeKeyFeatureHistory     = "feature.history"
	ScopeKeyFeaturesGet        = "features.get"
	ScopeKeyCloneGet           = "clone.get"
	ScopeKeyCloneQuery         = "clone.query"
	ScopeKeyDeltaList          = "delta.list"
	ScopeKeyDeltaGet           = "delta.get"
	ScopeKeyMVTGet             = "mvt.get"
	ScopeKeyMVTRegen           = "mvt.regen"
	ScopeKeyMVTMeta            = "mvt.meta"
	ScopeKeyMVTDelete          = "mvt.delete"
	ScopeKeyUserCreateSession  = "user.create_session"
	ScopeKeyUserCreate         = "user.create"
	ScopeKeyUserGet            = "user.get"
	ScopeKeyUserSet            = "user.set"
	ScopeKeySchemaGet          = "schema.get"
	ScopeKeyWebhooksGet        = "webhooks.get"
	ScopeKeyWebhooksSet        = "webhooks.set"
	ScopeKeyStyleGet           = "style.get"
	ScopeKeyStyleSet           = "style.set"
	ScopeKeyBoundsGet          = "bounds.get"
	ScopeKeyBoundsSet          = "bounds.set"
	ScopeKeyMetaGet            = "meta.get"
	ScopeKeyMetaSet            = "meta.set"
)

// EndpointScopes documents the route -> scope key wiring from
// spec.md §6, for anything (tests, an admin /api/auth dump) that
// wants the full table rather than a single lookup.
var EndpointScopes = map[string]string{
	"GET /api/auth":                         ScopeKeyAuthGet,
	"POST /api/data/feature":                ScopeKeyFeatureCreate,
	"POST /api/data/feature?force=true":     ScopeKeyFeatureForce,
	"GET /api/data/feature/:id":             ScopeKeyFeatureGet,
	"GET /api/data/feature/:id/history":     ScopeKeyFeatureHistory,
	"GET /api/data/features":                ScopeKeyFeaturesGet,
	"GET /api/data/clone":                   ScopeKeyCloneGet,
	"GET /api/data/query":                   ScopeKeyCloneQuery,
	"GET /api/deltas":                       ScopeKeyDeltaList,
	"GET /api/delta/:id":                    ScopeKeyDeltaGet,
	"GET /api/tiles/:z/:x/:y":                ScopeKeyMVTGet,
	"GET /api/tiles/:z/:x/:y/regen":          ScopeKeyMVTRegen,
	"GET /api/tiles/:z/:x/:y/meta":           ScopeKeyMVTMeta,
	"DELETE /api/tiles":                      ScopeKeyMVTDelete,
	"GET /api/user/session":                 ScopeKeyUserCreateSession,
	"POST /api/user/session":                ScopeKeyUserCreateSession,
	"DELETE /api/user/session":              ScopeKeyUserCreateSession,
	"POST /api/user/token":                  ScopeKeyUserCreateSession,
	"POST /api/user/create":                 ScopeKeyUserCreate,
	"GET /api/user/:id":                     ScopeKeyUserGet,
	"POST /api/user/:id":                    ScopeKeyUserSet,
	"GET /api/schema":                       ScopeKeySchemaGet,
	"GET /api/webhooks":                     ScopeKeyWebhooksGet,
	"POST /api/webhooks":                    ScopeKeyWebhooksSet,
	"DELETE /api/webhooks/:id":               ScopeKeyWebhooksSet,
}
