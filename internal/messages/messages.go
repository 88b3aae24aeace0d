// Package messages holds the portal's user-facing strings. The audience is
// Mongolian-speaking, so everything a user sees is Mongolian; log lines and
// error wrapping stay in English.
package messages

const (
	ErrContentRequired      = "Агуулга бичнэ үү!"
	ErrCommentRequired      = "Сэтгэгдэл бичнэ үү!"
	ErrLoginRequired        = "Нэвтэрсэн байх шаардлагатай!"
	ErrLikeLoginRequired    = "Лайк өгөхийн тулд нэвтэрнэ үү!"
	ErrCommentLoginRequired = "Comment бичихийн тулд нэвтэрнэ үү!"
	ErrUsernameRequired     = "Хэрэглэгчийн нэр оруулна уу!"
	ErrEmailRequired        = "Имэйл хаягаа оруулна уу!"
	ErrPasswordTooShort     = "Нууц үг 6-аас дээш тэмдэгт байх ёстой!"
	ErrAllFieldsRequired    = "Бүх талбарыг бөглөнө үү!"
	ErrWrongAdminPassword   = "Нууц үг буруу байна!"
	ErrAlreadyRegistered    = "Энэ имэйл аль хэдийн бүртгэгдсэн байна!"
	ErrInvalidLogin         = "Имэйл эсвэл нууц үг буруу байна!"
	ErrAlreadyLiked         = "Та энэ постод лайк өгсөн байна!"
	ErrNotFound             = "Олдсонгүй!"
	ErrNotOwner             = "Зөвхөн өөрийн бичлэгийг устгах боломжтой!"
	ErrResetTokenInvalid    = "Сэргээх холбоос хүчингүй эсвэл хугацаа нь дууссан байна!"
	ErrServer               = "Алдаа гарлаа. Дахин оролдоно уу!"

	ErrImageType    = "Зөвхөн JPG, PNG, GIF, WEBP зураг оруулна уу!"
	ErrImageTooBig  = "Зурагны хэмжээ 5MB-аас бага байх ёстой!"
	ErrVideoType    = "Зөвхөн MP4, WEBM, MOV бичлэг оруулна уу!"
	ErrVideoTooBig  = "Бичлэгийн хэмжээ 100MB-аас бага байх ёстой!"
	ErrUploadFailed = "Upload хийхэд алдаа гарлаа!"

	PostCreated    = "Пост амжилттай нийтлэгдлээ! ✅"
	PostDeleted    = "Пост устгагдлаа!"
	ImageUploaded  = "Зураг амжилттай upload хийгдлээ! 📸"
	VideoUploaded  = "Бичлэг амжилттай upload хийгдлээ! 🎬"
	SignedIn       = "Амжилттай нэвтэрлээ! ✅"
	SignedUp       = "Амжилттай бүртгэгдлээ! ✅"
	ResetRequested = "Нууц үг сэргээх холбоос илгээгдлээ!"
)

// DefaultPostTitle replaces a blank testimony title.
const DefaultPostTitle = "Пост"

// DefaultUsername is the last-resort display name when no profile exists.
const DefaultUsername = "User"
