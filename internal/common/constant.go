package common

// AuthorizationHeaderName is the HTTP header that carries the bearer access
// token on protected requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the scheme prefix expected in the authorization header.
const BearerPrefix = "Bearer "
