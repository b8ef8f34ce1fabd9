// Package services contains clients for external collaborators.
//
// The only collaborator today is the acquisition backend, the HTTP service
// that turns a video URL into a directly playable stream link. The client
// treats any non-success response as a hard failure so no partial track ever
// reaches the catalog.
package services
