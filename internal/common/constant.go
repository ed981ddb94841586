package common

// AuthorizationHeaderName is the HTTP header carrying the access token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the access token inside AuthorizationHeaderName.
const BearerScheme = "Bearer "

// AppName is the display name used in outgoing mail and CLI help.
const AppName = "Customer Database App"
