// Package grpc provides gRPC server interceptors authenticating calls with
// XSUAA or IAS access tokens.
//
// Both unary and streaming interceptors read a Bearer token from the
// "authorization" metadata, validate it with the configured validator and
// store the *token.Token in the call context.
//
// # Basic Usage
//
//	import (
//	    "log"
//	    "net"
//
//	    "github.com/sap/cloud-security-client-go/config"
//	    cloudsecuritygrpc "github.com/sap/cloud-security-client-go/integrations/grpc"
//	    "github.com/sap/cloud-security-client-go/validator"
//	    "google.golang.org/grpc"
//	)
//
//	func main() {
//	    cfg, err := config.FromEnvironment(config.ServiceIAS)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    chain, err := validator.New(cfg)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    interceptor, err := cloudsecuritygrpc.New(
//	        cloudsecuritygrpc.WithValidator(chain),
//	        cloudsecuritygrpc.WithExcludedMethods("/grpc.health.v1.Health/Check"),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    server := grpc.NewServer(
//	        grpc.UnaryInterceptor(interceptor.UnaryServerInterceptor()),
//	        grpc.StreamInterceptor(interceptor.StreamServerInterceptor()),
//	    )
//
//	    listener, _ := net.Listen("tcp", ":50051")
//	    server.Serve(listener)
//	}
//
// # Certificate Bound Tokens
//
// With TLS transport credentials requesting client certificates, the peer
// certificate is passed to the validator, so chains built with
// validator.WithX5tValidation or validator.WithCnfValidation accept only
// tokens bound to it.
//
// # Token Retrieval
//
//	func (s *server) GetData(ctx context.Context, req *pb.Request) (*pb.Response, error) {
//	    t, err := cloudsecuritygrpc.GetToken(ctx)
//	    if err != nil {
//	        return nil, status.Error(codes.Internal, "failed to get token")
//	    }
//
//	    return &pb.Response{Tenant: t.AppTID()}, nil
//	}
//
// # Error Handling
//
// DefaultErrorHandler maps failures to status codes: Unauthenticated for
// missing or rejected tokens, PermissionDenied for a foreign issuer or
// audience, InvalidArgument for malformed metadata or tokens, and Internal
// if the signing keys could not be retrieved.
package grpc
