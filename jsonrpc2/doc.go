/*
	Package jsonrpc2 implements JSON-RPC 2.0 messages and a method dispatcher.

	Request and Response are validated on parse: a malformed document is
	reported as an *Error with the appropriate protocol code rather than a
	generic decoding failure. Response is either a *Success or a *Failure.

	Error classifies every integer code into one Kind. The five protocol codes
	have fixed messages, codes in [-32099, -32000] are server errors, and any
	other code is an application error reported by a peer.

	Server is a method registry. Given a receiver, it will expose its exported
	methods, or individual Handlers can be registered by name. Server.Call
	always produces exactly one Response for a request.

	Codec is the transport and encoding for streams of documents, such as
	stdio or websockets. HTTPServer and HTTPService carry one document per HTTP
	round trip.
*/
package jsonrpc2
