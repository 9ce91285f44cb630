// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

// webclient provides a collection of related packages which let a single page
// application authenticate its users with OpenID Connect providers using the
// implicit flow, without a server side session.
//
// See the client package for the WebClient, and the rp package for the relying
// party it delegates protocol work to.
package webclient
