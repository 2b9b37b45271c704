package router

import (
	"Community_Graph/internal/handler"
	"Community_Graph/internal/middleware"
	"Community_Graph/internal/repository/redis"
	"Community_Graph/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps 路由依赖的服务，由 main 组装
type Deps struct {
	Users       *service.UserService
	Communities *service.CommunityService
	Members     *service.MemberService
	Follows     *service.FollowService
	Categories  *service.CategoryService
	Posts       *service.PostService
	Comments    *service.CommentService
	Tokens      *redis.TokenRepository
}

func InitRouter(d Deps) *gin.Engine {
	r := gin.Default()

	user := handler.NewUserHandler(d.Users)
	community := handler.NewCommunityHandler(d.Communities, d.Members)
	member := handler.NewMemberHandler(d.Members)
	follow := handler.NewFollowHandler(d.Follows)
	category := handler.NewCategoryHandler(d.Categories)
	post := handler.NewPostHandler(d.Posts)
	comment := handler.NewCommentHandler(d.Comments)

	auth := middleware.AuthMiddleware(d.Tokens)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 用户相关接口
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.POST("/login", user.Login)
		userGroup.POST("/logout", auth, user.Logout)
	}

	// token相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", user.TokenRefresh)
	}

	api := r.Group("/api")
	api.Use(auth)

	// 登录态接口
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/change-password", user.ChangePassword)
	}

	me := api.Group("/me")
	{
		me.GET("", user.Me)
		me.GET("/members", community.MyMemberships)
		me.GET("/favorites", community.MyFavorites)
	}

	// 社区相关接口
	communityGroup := api.Group("/communities")
	{
		communityGroup.GET("", community.List)
		communityGroup.POST("", community.Create)
		communityGroup.GET("/:community_id", community.Get)
		communityGroup.POST("/:community_id/join", community.Join)
		communityGroup.GET("/:community_id/me", community.Me)
		communityGroup.GET("/:community_id/members", community.Members)
		communityGroup.GET("/:community_id/favorites", community.IsFavorite)
		communityGroup.POST("/:community_id/favorites", community.Favorite)
		communityGroup.DELETE("/:community_id/favorites", community.Unfavorite)
		communityGroup.GET("/:community_id/categories", category.List)
		communityGroup.POST("/:community_id/categories", category.Create)
	}

	// 成员及关注关系
	memberGroup := api.Group("/members/:member_id")
	{
		memberGroup.GET("", member.Profile)
		memberGroup.PUT("", member.Update)
		memberGroup.DELETE("", member.Leave)

		memberGroup.GET("/followers", follow.ListFollowers)
		memberGroup.POST("/followers/:follower_id", follow.Accept)
		memberGroup.DELETE("/followers/:follower_id", follow.RemoveFollower)

		memberGroup.GET("/followings", follow.ListFollowings)
		memberGroup.POST("/followings/:following_id", follow.Follow)
		memberGroup.DELETE("/followings/:following_id", follow.Unfollow)

		memberGroup.GET("/blocks", follow.ListBlocks)
		memberGroup.POST("/blocks/:block_id", follow.Block)
		memberGroup.DELETE("/blocks/:block_id", follow.Unblock)

		memberGroup.GET("/scraps", post.ListScraps)
	}

	categoryGroup := api.Group("/categories/:category_id")
	{
		categoryGroup.GET("/posts", post.ListByCategory)
		categoryGroup.POST("/posts", post.CreatePost)
		categoryGroup.POST("/favorites", category.Favorite)
		categoryGroup.DELETE("/favorites", category.Unfavorite)
	}

	// 帖子相关接口
	postGroup := api.Group("/posts/:post_id")
	{
		postGroup.GET("", post.GetPost)
		postGroup.DELETE("", post.DeletePost)
		postGroup.POST("/likes", post.Like)
		postGroup.DELETE("/likes", post.Unlike)
		postGroup.POST("/scraps", post.Scrap)
		postGroup.DELETE("/scraps", post.Unscrap)
		postGroup.GET("/comments", comment.ListComments)
		postGroup.POST("/comments", comment.CreateComment)
	}

	commentGroup := api.Group("/comments/:comment_id")
	{
		commentGroup.DELETE("", comment.DeleteComment)
		commentGroup.POST("/likes", comment.LikeComment)
		commentGroup.DELETE("/likes", comment.UnlikeComment)
		commentGroup.GET("/replies", comment.ListReplies)
		commentGroup.POST("/replies", comment.CreateReply)
	}

	replyGroup := api.Group("/replies/:reply_id")
	{
		replyGroup.DELETE("", comment.DeleteReply)
		replyGroup.POST("/likes", comment.LikeReply)
		replyGroup.DELETE("/likes", comment.UnlikeReply)
	}

	return r
}
